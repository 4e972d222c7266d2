package reveal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTrackerMarkIsOneShot(t *testing.T) {
	tr := NewTracker()

	require.False(t, tr.Visible("sess", "hero"))

	tr.Mark("sess", "hero")
	require.True(t, tr.Visible("sess", "hero"))

	// Re-marking does not change anything.
	tr.Mark("sess", "hero")
	require.True(t, tr.Visible("sess", "hero"))
}

func TestTrackerScopedPerSession(t *testing.T) {
	tr := NewTracker()

	tr.Mark("a", "products")
	require.True(t, tr.Visible("a", "products"))
	require.False(t, tr.Visible("b", "products"))
}

func TestTrackerIgnoresBlankKeys(t *testing.T) {
	tr := NewTracker()

	tr.Mark("", "hero")
	require.False(t, tr.Visible("", "hero"))

	tr.Mark("sess", "", "  ", "contact")
	require.False(t, tr.Visible("sess", ""))
	require.True(t, tr.Visible("sess", "contact"))
}
