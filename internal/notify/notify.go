// Package notify is the user-visible status surface of a sync.
package notify

import (
	"fmt"
	"os"
)

// Notifier receives transient status notifications. Failure messages stay
// generic; error classes are not distinguished in the UI.
type Notifier interface {
	// Synced reports one written vault file.
	Synced(path string, records int)

	// Failure reports that an operation failed as a whole.
	Failure(op string, err error)
}

// Console prints notifications to stdout and stderr.
type Console struct{}

func (Console) Synced(path string, records int) {
	fmt.Printf("synced %s (%d records)\n", path, records)
}

func (Console) Failure(op string, err error) {
	fmt.Fprintf(os.Stderr, "%s failed: %v\n", op, err)
	fmt.Fprintln(os.Stderr, "See api-logs.md in the vault for details.")
}

// Nop discards every notification.
type Nop struct{}

func (Nop) Synced(string, int) {}

func (Nop) Failure(string, error) {}
