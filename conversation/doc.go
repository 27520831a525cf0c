// Package conversation holds the append-only chat transcript model: messages
// with a closed body union (text, tool request, tool answer), the validated
// Log, and an in-memory multi-conversation Store.
//
// The log is the single source of truth a turn operates on. Invariants are
// enforced at append time: the system prompt appears exactly once as the
// seed, user messages carry text, assistant messages carry text or tool
// calls, and every tool answer must reference a call id from the assistant
// tool request it responds to.
package conversation
