package emit

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vdm-generator/internal/vdm"
)

func testModel() *vdm.Model {
	key := []vdm.Parameter{{Source: "MaterialDocument", Name: "materialDocument", JavaType: "String"}}
	all := append(append([]vdm.Parameter{}, key...),
		vdm.Parameter{Source: "PostingDate", Name: "postingDate", JavaType: "LocalDate"})
	return &vdm.Model{
		ServiceID:    "API_MATERIAL_DOCUMENT_SRV",
		ServiceClass: "MaterialDocumentService",
		Package:      "com.example.vdm.materialdocument",
		Entities: []vdm.Entity{
			{
				Source:            "A_MaterialDocumentHeader",
				Label:             "Material Document Header",
				ClassName:         "MaterialDocumentHeader",
				FluentHelperClass: "MaterialDocumentHeaderFluentHelper",
				CollectionMethod:  "getAllMaterialDocumentHeaders",
				ByKeyMethod:       "getMaterialDocumentHeaderByKey",
				Properties: []vdm.Property{
					{Source: "MaterialDocument", Field: "materialDocument", Constant: "MATERIAL_DOCUMENT", BuilderMethod: "materialDocument", JavaType: "String", Key: true},
					{Source: "DocumentAmount", Field: "documentAmount", Constant: "DOCUMENT_AMOUNT", BuilderMethod: "documentAmount", JavaType: "BigDecimal"},
				},
				Navigations: []vdm.Navigation{
					{Source: "to_MaterialDocumentItem", Field: "toMaterialDocumentItem", Constant: "TO_MATERIAL_DOCUMENT_ITEM", Method: "materialDocumentItem", Target: "MaterialDocumentItem", Many: true},
				},
			},
		},
		Operations: []vdm.Operation{
			{
				Source:     "CancelMaterialDocument",
				Method:     "cancelMaterialDocument",
				HTTPMethod: "POST",
				ReturnType: "List<MaterialDocumentHeader>",
				Parameters: all,
				Overloads:  [][]vdm.Parameter{key, all},
			},
		},
	}
}

func TestEmit_Files(t *testing.T) {
	e, err := New("")
	require.NoError(t, err)

	files, err := e.Emit(context.Background(), testModel())
	require.NoError(t, err)

	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{
		"com/example/vdm/materialdocument/MaterialDocumentHeader.java",
		"com/example/vdm/materialdocument/MaterialDocumentHeaderFluentHelper.java",
		"com/example/vdm/materialdocument/MaterialDocumentService.java",
	}, paths)
}

func TestEmit_EntityUsesResolvedNames(t *testing.T) {
	e, err := New("com.acme.runtime")
	require.NoError(t, err)
	files, err := e.Emit(context.Background(), testModel())
	require.NoError(t, err)

	entity := string(files[0].Content)
	assert.True(t, strings.HasPrefix(entity, "// Generated by vdm-generator"))
	assert.Contains(t, entity, "package com.example.vdm.materialdocument;")
	assert.Contains(t, entity, "import java.math.BigDecimal;")
	assert.Contains(t, entity, "import com.acme.runtime.VdmEntity;")
	assert.Contains(t, entity, "public class MaterialDocumentHeader extends VdmEntity<MaterialDocumentHeader> {")
	assert.Contains(t, entity, `ALL_FIELDS = List.of("MaterialDocument", "DocumentAmount");`)
	assert.Contains(t, entity, `public static final String MATERIAL_DOCUMENT = "MaterialDocument";`)
	assert.Contains(t, entity, "private BigDecimal documentAmount;")
	assert.Contains(t, entity, "Material Document Header")
	assert.Contains(t, entity, "public MaterialDocumentHeader documentAmount(final BigDecimal value) {")
	assert.Contains(t, entity, "private List<MaterialDocumentItem> toMaterialDocumentItem;")
	assert.Contains(t, entity, "public List<MaterialDocumentItem> materialDocumentItem() {")

	helper := string(files[1].Content)
	assert.Contains(t, helper, "public class MaterialDocumentHeaderFluentHelper extends FluentHelperRead<MaterialDocumentHeaderFluentHelper, MaterialDocumentHeader> {")
}

func TestEmit_ServiceEmitsEveryOverload(t *testing.T) {
	e, err := New("")
	require.NoError(t, err)
	files, err := e.Emit(context.Background(), testModel())
	require.NoError(t, err)

	service := string(files[2].Content)
	assert.Contains(t, service, "public class MaterialDocumentService {")
	assert.Contains(t, service, `DEFAULT_SERVICE_PATH = "/API_MATERIAL_DOCUMENT_SRV";`)
	assert.Contains(t, service, "import java.time.LocalDate;")
	assert.Contains(t, service, "public MaterialDocumentHeaderFluentHelper getAllMaterialDocumentHeaders() {")
	assert.Contains(t, service, "public MaterialDocumentHeaderFluentHelper getMaterialDocumentHeaderByKey(final String materialDocument) {")
	assert.Contains(t, service, "public FunctionCall<List<MaterialDocumentHeader>> cancelMaterialDocument(final String materialDocument) {")
	assert.Contains(t, service, "public FunctionCall<List<MaterialDocumentHeader>> cancelMaterialDocument(final String materialDocument, final LocalDate postingDate) {")
	assert.Contains(t, service, `parameters.put("PostingDate", postingDate);`)
	assert.Contains(t, service, "List.class, parameters);")
	assert.Equal(t, 2, strings.Count(service, "cancelMaterialDocument("))
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "List", rawType("List<Foo>"))
	assert.Equal(t, "byte[]", rawType("byte[]"))
	assert.Equal(t, "Name", doc("", "Name"))
	assert.Equal(t, "a * / b", doc("a */ b", "x"))
	assert.Equal(t, []string{"java.math.BigDecimal", "java.time.LocalDate"},
		collectImports([]string{"List<LocalDate>", "BigDecimal", "String", "LocalDate"}))
}
