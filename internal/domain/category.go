package domain

import "strings"

// Category groups commands by output shape for prompt selection and
// pipeline hints.
type Category string

const (
	CategoryVersionControl Category = "version_control"
	CategoryFileOperations Category = "file_operations"
	CategoryBuildTest      Category = "build_test"
	CategoryContainerTools Category = "container_tools"
	CategoryLogs           Category = "logs"
	CategoryGeneric        Category = "generic"
)

var (
	versionControlCommands = []string{"git", "svn", "hg"}
	fileCommands           = []string{"ls", "dir", "find", "cat", "type", "head", "tail", "wc", "tree", "du", "df", "file", "stat"}
	buildCommands          = []string{"cargo", "npm", "npx", "yarn", "pnpm", "dotnet", "make", "cmake", "gradle", "mvn", "go", "pytest", "msbuild"}
	containerCommands      = []string{"docker", "podman", "kubectl", "helm"}
)

// ClassifyCategory maps a core command to its output category. Log viewers
// win over file operations so `tail -f service.log` is treated as a log
// stream rather than a file read.
func ClassifyCategory(core string) Category {
	fields := strings.Fields(strings.ToLower(core))
	if len(fields) == 0 {
		return CategoryGeneric
	}
	first := fields[0]

	for _, c := range versionControlCommands {
		if first == c {
			return CategoryVersionControl
		}
	}
	if first == "journalctl" || first == "dmesg" {
		return CategoryLogs
	}
	if first == "tail" && hasField(fields, "-f") {
		return CategoryLogs
	}
	for _, c := range fileCommands {
		if first == c {
			return CategoryFileOperations
		}
	}
	for _, c := range buildCommands {
		if first == c {
			return CategoryBuildTest
		}
	}
	for _, c := range containerCommands {
		if first == c {
			return CategoryContainerTools
		}
	}
	if strings.Contains(strings.ToLower(core), "log") {
		return CategoryLogs
	}
	return CategoryGeneric
}

func hasField(fields []string, want string) bool {
	for _, f := range fields {
		if f == want {
			return true
		}
	}
	return false
}
