// Package bot provides a wrapper for the Telegram bot to implement OperatorNotifier interface
package bot

import "attendance-reporter/internal/services"

// Notifier wraps the package-level bot functions to implement services.OperatorNotifier interface
type Notifier struct{}

// NewNotifier creates a new bot notifier
func NewNotifier() *Notifier {
	return &Notifier{}
}

// SendNotification sends a notification to the admin chat
func (n *Notifier) SendNotification(message string) {
	SendNotification(message)
}

// Ensure Notifier implements the OperatorNotifier interface
var _ services.OperatorNotifier = (*Notifier)(nil)
