package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vandanchopra/MathematricksQ-sub000/internal/domain"
)

func scored(name string, score float64) domain.Strategy {
	return domain.Strategy{
		ID:         "id-" + name,
		Name:       name,
		Score:      score,
		Parameters: map[string]float64{"x": 1},
	}
}

func TestSelectTop_ThresholdFilters(t *testing.T) {
	batch := []domain.Strategy{
		scored("a", 0.9),
		scored("b", 0.75),
		scored("c", 0.65),
		scored("d", 0.5),
		scored("e", 0.3),
	}

	top := selectTop(batch, 0.7, 3)

	require.Len(t, top, 2, "solo 0.9 y 0.75 superan 0.7")
	assert.Equal(t, "a", top[0].Name)
	assert.Equal(t, "b", top[1].Name)
}

func TestSelectTop_CapsAtK(t *testing.T) {
	batch := []domain.Strategy{
		scored("a", 0.95),
		scored("b", 0.90),
		scored("c", 0.85),
		scored("d", 0.80),
	}

	top := selectTop(batch, 0.7, 3)

	require.Len(t, top, 3)
	assert.Equal(t, "a", top[0].Name)
	assert.Equal(t, "c", top[2].Name)
}

func TestSelectTop_SortsDescending(t *testing.T) {
	batch := []domain.Strategy{
		scored("low", 0.72),
		scored("high", 0.95),
		scored("mid", 0.80),
	}

	top := selectTop(batch, 0.7, 5)

	require.Len(t, top, 3)
	assert.Equal(t, []string{"high", "mid", "low"}, []string{top[0].Name, top[1].Name, top[2].Name})
}

func TestSelectTop_ThresholdInclusive(t *testing.T) {
	top := selectTop([]domain.Strategy{scored("edge", 0.7)}, 0.7, 3)
	require.Len(t, top, 1, "score == umbral pasa el filtro")
}

func TestSelectTop_Empty(t *testing.T) {
	assert.Empty(t, selectTop(nil, 0.7, 3))
	assert.Empty(t, selectTop([]domain.Strategy{scored("a", 0.1)}, 0.7, 3))
}

func TestSelectTop_CopiesStrategies(t *testing.T) {
	batch := []domain.Strategy{scored("a", 0.9)}

	top := selectTop(batch, 0.7, 3)
	require.Len(t, top, 1)

	top[0].Parameters["x"] = 99
	assert.InDelta(t, 1.0, batch[0].Parameters["x"], 1e-9, "mutar la selección no toca el batch original")
}
