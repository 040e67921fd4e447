package instructions

import "strings"

// MergeInput collects all instruction sources for one turn.
type MergeInput struct {
	// BaseOverride replaces the default base system prompt if non-empty.
	BaseOverride string

	// PersonalInstructions is appended to the system prompt if non-empty.
	PersonalInstructions string

	// Task is what the user asked for.
	Task string

	// SandboxContext is the output of BuildSandboxContext.
	SandboxContext string

	// Feedback holds result lines from commands run in earlier turns.
	Feedback []string
}

// MergedInstructions is the result of merging all instruction sources.
type MergedInstructions struct {
	// System is sent as the system prompt.
	System string
	// User is the user turn.
	User string
}

// MergeInstructions combines all instruction sources.
//
// Merge rules:
//   - System: GetBaseInstructions(BaseOverride) + PersonalInstructions
//   - User: Task, then SandboxContext, then earlier results if any
func MergeInstructions(input MergeInput) MergedInstructions {
	system := GetBaseInstructions(input.BaseOverride)
	if input.PersonalInstructions != "" {
		system += "\n\n# User instructions\n\n" + input.PersonalInstructions
	}

	var userParts []string
	if input.Task != "" {
		userParts = append(userParts, "Task: "+input.Task)
	}
	if input.SandboxContext != "" {
		userParts = append(userParts, input.SandboxContext)
	}
	if len(input.Feedback) > 0 {
		userParts = append(userParts, "Results of your previous commands:\n"+strings.Join(input.Feedback, "\n"))
	}

	return MergedInstructions{
		System: system,
		User:   strings.Join(userParts, "\n\n"),
	}
}
