package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPluralize(t *testing.T) {
	inflector := NewInflector(DefaultConfig())

	tests := []struct {
		input    string
		expected string
	}{
		{"user", "users"},
		{"category", "categories"},
		{"person", "people"},
		{"child", "children"},
		{"status", "statuses"},
		{"analysis", "analyses"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, inflector.Pluralize(tt.input))
		})
	}
}

func TestSingularize(t *testing.T) {
	inflector := NewInflector(DefaultConfig())

	tests := []struct {
		input    string
		expected string
	}{
		{"users", "user"},
		{"categories", "category"},
		{"people", "person"},
		{"children", "child"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, inflector.Singularize(tt.input))
		})
	}
}

func TestInflectionOverrides(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PluralOverrides["Partner"] = "PartnerData"
	cfg.SingularOverrides["data"] = "datum"
	inflector := NewInflector(cfg)

	assert.Equal(t, "PartnerData", inflector.Pluralize("Partner"))
	assert.Equal(t, "datum", inflector.Singularize("data"))
}

func TestCollectionName(t *testing.T) {
	inflector := NewInflector(DefaultConfig())

	assert.Equal(t, "SalesOrderItems", inflector.CollectionName("SalesOrderItem"))
	assert.Equal(t, "BusinessPartnerAddresses", inflector.CollectionName("BusinessPartnerAddress"))
	assert.Equal(t, "Categories", inflector.CollectionName("Category"))
	assert.Equal(t, "people", inflector.CollectionName("person"))
}
