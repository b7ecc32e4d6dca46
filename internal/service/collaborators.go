package service

import "economy_server/internal/domain"

// DirtyMarker signals that an aggregate changed and should be persisted.
type DirtyMarker interface {
	MarkDirty()
}

// Notifier pushes an event to a player if they are connected.
type Notifier interface {
	Notify(player domain.PlayerID, ev domain.Event)
}

// Presence reports whether a player currently has a live session.
type Presence interface {
	IsOnline(player domain.PlayerID) bool
}

// Inventory is the held-items collaborator. Give reports false when the
// player cannot hold the stack; Drop places it at the player's location.
type Inventory interface {
	Give(player domain.PlayerID, stack domain.ItemStack) bool
	Drop(player domain.PlayerID, stack domain.ItemStack)
}

// Holder removes units a player holds so they can be listed.
type Holder interface {
	Take(player domain.PlayerID, itemID string, units int) (domain.ItemStack, error)
}

// Executor runs a function on the authoritative context.
type Executor interface {
	Submit(fn func()) bool
}

type nopDirty struct{}

func (nopDirty) MarkDirty() {}

type nopNotifier struct{}

func (nopNotifier) Notify(domain.PlayerID, domain.Event) {}

func orNopDirty(d DirtyMarker) DirtyMarker {
	if d == nil {
		return nopDirty{}
	}
	return d
}

func orNopNotifier(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}

// deliver hands stacks to the player, dropping what does not fit.
// It reports whether anything was dropped.
func deliver(inv Inventory, player domain.PlayerID, stacks []domain.ItemStack) bool {
	if inv == nil {
		return false
	}
	dropped := false
	for _, s := range stacks {
		if !inv.Give(player, s) {
			inv.Drop(player, s)
			dropped = true
		}
	}
	return dropped
}
