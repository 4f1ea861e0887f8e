package service_test

import "strings"

// containsTask reports whether prompt was issued for the given task.
func containsTask(prompt, task string) bool {
	return strings.Contains(prompt, "Task: "+task+"\n")
}
