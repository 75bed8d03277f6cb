package notifier

import "github.com/automabit/silowatch/internal/types"

// Notifier is anything that accepts a notification
type Notifier interface {
	Notify(category types.Category, title, message string)
}

type multi []Notifier

// Multi fans a notification out to every notifier in order
func Multi(notifiers ...Notifier) Notifier {
	return multi(notifiers)
}

func (m multi) Notify(category types.Category, title, message string) {
	for _, n := range m {
		n.Notify(category, title, message)
	}
}
