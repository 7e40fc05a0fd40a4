// Package entra implements the Microsoft Graph operations behind the Entra
// tools: service principal investigation, disabling a service principal,
// revoking sign-in sessions and reading recent sign-in events.
//
// The package does not authenticate or gate anything itself. It talks to
// Graph through a Directory (normally a *directory.Client holding a token
// cache), and write operations are expected to be wrapped by the approval
// lifecycle before they are called.
package entra
