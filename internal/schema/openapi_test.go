package schema

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadOpenAPI(t *testing.T) {
	svc, err := ReadOpenAPI(openTestdata(t, "petstore.yaml"), "")
	require.NoError(t, err)

	assert.Equal(t, "Swagger Petstore", svc.Identifier)
	assert.Equal(t, FormatOpenAPI, svc.Format)
	assert.Equal(t, "3.0.3", svc.Version)

	var names []string
	for _, e := range svc.Entities {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"Pet", "Owner", "Toy"}, names)

	pet := svc.Entities[0]
	assert.Equal(t, "Pet Record", pet.Label)
	assert.Equal(t, []Property{
		{Name: "id", Type: "integer(int64)", Nullable: false},
		{Name: "name", Label: "Pet Name", Type: "string", Nullable: false},
		{Name: "tag", Type: "string", Nullable: true},
	}, pet.Properties)
	assert.Equal(t, []NavigationProperty{
		{Name: "owner", Target: "Owner"},
		{Name: "toys", Target: "Toy", Many: true},
	}, pet.NavigationProperties)

	require.Len(t, svc.Operations, 3)
	list := svc.Operations[0]
	assert.Equal(t, "listPets", list.Name)
	assert.Equal(t, "List all pets", list.Label)
	assert.Equal(t, "GET", list.HTTPMethod)
	assert.Equal(t, "Collection(Pet)", list.ReturnType)
	assert.Equal(t, []Parameter{{Name: "limit", Type: "integer(int32)", Nullable: true}}, list.Parameters)

	create := svc.Operations[1]
	assert.Equal(t, "post pets", create.Name)
	assert.Equal(t, []Parameter{{Name: "Pet", Type: "Pet", Nullable: false}}, create.Parameters)
	assert.Empty(t, create.ReturnType)

	show := svc.Operations[2]
	assert.Equal(t, "showPetById", show.Name)
	assert.Equal(t, "Pet", show.ReturnType)
}

func TestReadOpenAPIJSON(t *testing.T) {
	doc := `{"swagger": "2.0", "info": {"title": "Orders"}, "paths": {}, "definitions": {"Order": {"type": "object", "properties": {"orderId": {"type": "string"}}}}}`

	svc, err := ReadOpenAPI(strings.NewReader(doc), "ORDERS_SRV")
	require.NoError(t, err)
	assert.Equal(t, "ORDERS_SRV", svc.Identifier)
	require.Len(t, svc.Entities, 1)
	assert.Equal(t, "orderId", svc.Entities[0].Properties[0].Name)
}

func TestReadOpenAPIRejectsUnversionedDocuments(t *testing.T) {
	_, err := ReadOpenAPI(strings.NewReader("info:\n  title: x\n"), "")
	assert.Error(t, err)
}

func TestReadFile(t *testing.T) {
	svc, err := ReadFile("testdata/material_document_v2.edmx", "")
	require.NoError(t, err)
	assert.Equal(t, FormatEDMX, svc.Format)

	svc, err = ReadFile("testdata/petstore.yaml", "PETSTORE")
	require.NoError(t, err)
	assert.Equal(t, FormatOpenAPI, svc.Format)
	assert.Equal(t, "PETSTORE", svc.Identifier)

	// Unknown extensions are sniffed and the file name is the fallback identifier.
	data, err := os.ReadFile("testdata/trippin_v4.xml")
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "trippin.metadata")
	require.NoError(t, os.WriteFile(path, []byte(strings.Replace(string(data), `Namespace="Trippin"`, `Namespace=""`, 1)), 0o644))

	svc, err = ReadFile(path, "")
	require.NoError(t, err)
	assert.Equal(t, FormatEDMX, svc.Format)
	assert.Equal(t, "trippin", svc.Identifier)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.edmx"), "")
	assert.Error(t, err)
}
