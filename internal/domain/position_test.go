package domain

import (
	"testing"
)

func TestNewNodePosition(t *testing.T) {
	t.Run("creates position keyed by uid", func(t *testing.T) {
		pos := NewNodePosition("Router-1", 100.5, 200.5)

		if pos.NodeUID != "Router-1" {
			t.Errorf("expected NodeUID 'Router-1', got %s", pos.NodeUID)
		}
		if pos.X != 100.5 {
			t.Errorf("expected X=100.5, got %f", pos.X)
		}
		if pos.Y != 200.5 {
			t.Errorf("expected Y=200.5, got %f", pos.Y)
		}
	})

	t.Run("creates position at origin", func(t *testing.T) {
		pos := NewNodePosition("Switch-2", 0, 0)

		if pos.X != 0 || pos.Y != 0 {
			t.Errorf("expected origin, got (%f, %f)", pos.X, pos.Y)
		}
	})

	t.Run("negative coordinates are kept", func(t *testing.T) {
		pos := NewNodePosition("OLT-3", -50, -75.25)

		if pos.X != -50 || pos.Y != -75.25 {
			t.Errorf("expected (-50, -75.25), got (%f, %f)", pos.X, pos.Y)
		}
	})
}
