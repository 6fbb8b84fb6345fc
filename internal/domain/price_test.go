package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPrice_JSONIsPlainNumber(t *testing.T) {
	item := CartItem{ProductID: "p1", Quantity: 2, Price: NewPrice(10)}

	data, err := json.Marshal(item)
	require.NoError(t, err)

	assert.JSONEq(t, `{"productId":"p1","quantity":2,"name":"","price":10,"shopOwnerId":""}`, string(data))
}

func TestPrice_JSONAcceptsQuotedString(t *testing.T) {
	var p Price
	require.NoError(t, json.Unmarshal([]byte(`"12.40"`), &p))

	assert.Equal(t, "12.4", p.String())
}

func TestPrice_BSONStoresDecimal128(t *testing.T) {
	doc, err := bson.Marshal(bson.M{"price": NewPrice(99.99)})
	require.NoError(t, err)

	raw := bson.Raw(doc).Lookup("price")
	assert.Equal(t, bson.TypeDecimal128, raw.Type)

	var out struct {
		Price Price `bson:"price"`
	}
	require.NoError(t, bson.Unmarshal(doc, &out))
	assert.Equal(t, "99.99", out.Price.String())
}

func TestPrice_BSONReadsLegacyDouble(t *testing.T) {
	doc, err := bson.Marshal(bson.M{"price": 10.5})
	require.NoError(t, err)

	var out struct {
		Price Price `bson:"price"`
	}
	require.NoError(t, bson.Unmarshal(doc, &out))
	assert.True(t, out.Price.Equal(NewPrice(10.5)))
}

func TestPrice_BSONRejectsNaN(t *testing.T) {
	nan, err := primitive.ParseDecimal128("NaN")
	require.NoError(t, err)
	doc, err := bson.Marshal(bson.M{"price": nan})
	require.NoError(t, err)

	var out struct {
		Price Price `bson:"price"`
	}
	assert.Error(t, bson.Unmarshal(doc, &out))
}
