package validate_test

import (
	"testing"

	"github.com/Astemirdum/lending-service/pkg/validate"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type item struct {
	Name  string          `json:"name" validate:"required"`
	Price decimal.Decimal `json:"price" validate:"gte=0"`
}

func TestCustomValidator_Validate(t *testing.T) {
	t.Parallel()
	v := validate.NewCustomValidator()

	require.NoError(t, v.Validate(item{Name: "Dune", Price: decimal.RequireFromString("1.50")}))
	require.NoError(t, v.Validate(item{Name: "Dune", Price: decimal.Zero}))

	err := v.Validate(item{Name: "Dune", Price: decimal.RequireFromString("-0.01")})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Equal(t, "price", verrs[0].Field())
	require.Equal(t, "gte", verrs[0].Tag())

	err = v.Validate(item{Price: decimal.Zero})
	require.ErrorAs(t, err, &verrs)
	require.Equal(t, "name", verrs[0].Field())
}
