// Package orchestrator runs conversation turns end to end: request building,
// stream consumption, tool-call assembly and execution, multi-round feedback
// of tool results, and commit of every message to the conversation log.
//
// One orchestrator serves one conversation. Turns run on a background
// goroutine and publish progress on an event channel; submitting while a
// turn is in flight cancels it first, so the newest user message always
// wins and a cancelled turn leaves no partial commits behind.
package orchestrator
