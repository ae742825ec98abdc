// Command curator is the operator CLI for the review session. It talks to a
// running curatord over its Unix control socket: listing the queue, editing
// notes and drafts, and driving generate, approve, reject, and post actions.
package main
