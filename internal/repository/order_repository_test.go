package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderFilter_Normalize(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		f := OrderFilter{}.Normalize()

		assert.Equal(t, "-created_at", f.Sort)
		assert.Equal(t, 1, f.Page)
		assert.Equal(t, 20, f.PerPage)
	})

	t.Run("unknown sort column falls back", func(t *testing.T) {
		f := OrderFilter{Sort: "id; DROP TABLE orders"}.Normalize()
		assert.Equal(t, "-created_at", f.Sort)
	})

	t.Run("keeps valid values", func(t *testing.T) {
		f := OrderFilter{Sort: "total_price", Page: 3, PerPage: 50}.Normalize()

		assert.Equal(t, "total_price", f.Sort)
		assert.Equal(t, 3, f.Page)
		assert.Equal(t, 50, f.PerPage)
	})

	t.Run("clamps page size", func(t *testing.T) {
		f := OrderFilter{PerPage: 1000}.Normalize()
		assert.Equal(t, 100, f.PerPage)
	})
}
