package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thenoetrevino/projecthub/internal/models"
)

func item(id string, prev *string) *models.BacklogItem {
	return &models.BacklogItem{ID: id, ProjectID: testProject, PrevItemID: prev}
}

func TestReconstruct(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		items   []*models.BacklogItem
		want    []string
		orphans []string
	}{
		{
			name:  "empty",
			items: nil,
			want:  []string{},
		},
		{
			name:  "single head",
			items: []*models.BacklogItem{item("a", nil)},
			want:  []string{"a"},
		},
		{
			name: "shuffled input",
			items: []*models.BacklogItem{
				item("c", strPtr("b")),
				item("a", nil),
				item("d", strPtr("c")),
				item("b", strPtr("a")),
			},
			want: []string{"a", "b", "c", "d"},
		},
		{
			name: "dangling predecessor",
			items: []*models.BacklogItem{
				item("a", nil),
				item("b", strPtr("a")),
				item("x", strPtr("gone")),
			},
			want:    []string{"a", "b"},
			orphans: []string{"x"},
		},
		{
			name: "no head",
			items: []*models.BacklogItem{
				item("a", strPtr("b")),
				item("b", strPtr("a")),
			},
			want:    []string{},
			orphans: []string{"a", "b"},
		},
		{
			name: "detached cycle beside a valid chain",
			items: []*models.BacklogItem{
				item("a", nil),
				item("b", strPtr("a")),
				item("x", strPtr("y")),
				item("y", strPtr("x")),
			},
			want:    []string{"a", "b"},
			orphans: []string{"x", "y"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, err := Reconstruct(tt.items)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.IDs())

			var orphans []string
			for _, o := range c.Orphans {
				orphans = append(orphans, o.ID)
			}
			assert.Equal(t, tt.orphans, orphans)

			if len(tt.orphans) > 0 {
				assert.ErrorIs(t, c.Verify(), models.ErrChainCorrupted)
			} else {
				assert.NoError(t, c.Verify())
			}
		})
	}
}

func TestReconstruct_Corruption(t *testing.T) {
	t.Parallel()

	t.Run("two heads", func(t *testing.T) {
		t.Parallel()
		_, err := Reconstruct([]*models.BacklogItem{item("a", nil), item("b", nil)})
		assert.ErrorIs(t, err, models.ErrChainCorrupted)
	})

	t.Run("two items share a predecessor", func(t *testing.T) {
		t.Parallel()
		_, err := Reconstruct([]*models.BacklogItem{
			item("a", nil),
			item("b", strPtr("a")),
			item("c", strPtr("a")),
		})
		assert.ErrorIs(t, err, models.ErrChainCorrupted)
		assert.Contains(t, err.Error(), "both follow a")
	})
}

func TestReconstruct_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	input := []*models.BacklogItem{item("b", strPtr("a")), item("a", nil)}
	c, err := Reconstruct(input)
	require.NoError(t, err)

	assert.Equal(t, "b", input[0].ID)
	assert.Equal(t, "a", input[1].ID)

	again, err := Reconstruct(input)
	require.NoError(t, err)
	assert.Equal(t, c.IDs(), again.IDs())
}

func TestChainAccessors(t *testing.T) {
	t.Parallel()

	c, err := Reconstruct([]*models.BacklogItem{
		item("a", nil),
		item("b", strPtr("a")),
		item("c", strPtr("b")),
	})
	require.NoError(t, err)

	assert.Equal(t, 3, c.Len())
	assert.Equal(t, "a", c.Head().ID)
	assert.Equal(t, "c", c.Tail().ID)
	assert.Equal(t, 1, c.IndexOf("b"))
	assert.Equal(t, -1, c.IndexOf("zz"))

	without := c.Without("b")
	require.Len(t, without, 2)
	assert.Equal(t, "a", without[0].ID)
	assert.Equal(t, "c", without[1].ID)

	empty := &Chain{}
	assert.Nil(t, empty.Head())
	assert.Nil(t, empty.Tail())
}
