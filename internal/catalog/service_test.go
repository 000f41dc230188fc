package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/production-ledger/internal/model"
	"github.com/fairyhunter13/production-ledger/internal/store"
)

type brokenCatalog struct{ err error }

func (b brokenCatalog) InsertProduct(context.Context, *model.Product) error { return b.err }
func (b brokenCatalog) ListProducts(context.Context) ([]model.Product, error) {
	return nil, b.err
}

func TestCatalogService(t *testing.T) {
	kg25 := []model.WeightVariant{{Value: 25, Unit: "kg"}}

	t.Run("CreateProduct_ReturnsStoredProduct", func(t *testing.T) {
		svc := NewService(store.NewMemory(), time.Second)
		p, err := svc.CreateProduct(context.Background(), "  Wheat Flour ", kg25)
		require.NoError(t, err)
		require.NotEmpty(t, p.ID)
		require.Equal(t, "Wheat Flour", p.ProductName)
		require.Equal(t, kg25, p.Weights)
		require.False(t, p.CreatedAt.IsZero())
	})

	t.Run("ListProducts_IsRepeatable", func(t *testing.T) {
		svc := NewService(store.NewMemory(), time.Second)
		ctx := context.Background()
		for _, name := range []string{"Flour", "Sugar", "Salt"} {
			_, err := svc.CreateProduct(ctx, name, kg25)
			require.NoError(t, err)
		}
		a, err := svc.ListProducts(ctx)
		require.NoError(t, err)
		b, err := svc.ListProducts(ctx)
		require.NoError(t, err)
		require.Equal(t, a, b)
		require.Len(t, a, 3)
		require.Equal(t, "Flour", a[0].ProductName)
		require.Equal(t, "Salt", a[2].ProductName)
	})

	t.Run("ListProducts_EmptyCatalog", func(t *testing.T) {
		svc := NewService(store.NewMemory(), time.Second)
		got, err := svc.ListProducts(context.Background())
		require.NoError(t, err)
		require.Empty(t, got)
	})

	t.Run("CreateProduct_RejectsInvalidInput", func(t *testing.T) {
		cases := map[string]struct {
			name    string
			weights []model.WeightVariant
		}{
			"blank_name":   {"   ", kg25},
			"no_weights":   {"Flour", nil},
			"zero_value":   {"Flour", []model.WeightVariant{{Value: 0, Unit: "kg"}}},
			"negative":     {"Flour", []model.WeightVariant{{Value: 5, Unit: "kg"}, {Value: -1, Unit: "kg"}}},
			"missing_unit": {"Flour", []model.WeightVariant{{Value: 5, Unit: " "}}},
		}
		for name, tc := range cases {
			t.Run(name, func(t *testing.T) {
				mem := store.NewMemory()
				svc := NewService(mem, time.Second)
				_, err := svc.CreateProduct(context.Background(), tc.name, tc.weights)
				require.ErrorIs(t, err, model.ErrInvalidInput)
				list, err := mem.ListProducts(context.Background())
				require.NoError(t, err)
				require.Empty(t, list)
			})
		}
	})

	t.Run("StoreFailure_IsUnavailable", func(t *testing.T) {
		svc := NewService(brokenCatalog{err: errors.New("no primary")}, time.Second)
		_, err := svc.CreateProduct(context.Background(), "Flour", kg25)
		require.ErrorIs(t, err, model.ErrStoreUnavailable)
		_, err = svc.ListProducts(context.Background())
		require.ErrorIs(t, err, model.ErrStoreUnavailable)
	})

	t.Run("CreateProduct_CopiesWeights", func(t *testing.T) {
		svc := NewService(store.NewMemory(), time.Second)
		in := []model.WeightVariant{{Value: 1, Unit: "kg"}}
		p, err := svc.CreateProduct(context.Background(), "Oats", in)
		require.NoError(t, err)
		in[0].Unit = "changed"
		require.Equal(t, "kg", p.Weights[0].Unit)
	})
}
