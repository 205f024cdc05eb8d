package schemanaming

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vdm-generator/internal/legacy"
	"vdm-generator/internal/mapping"
	"vdm-generator/internal/naming"
	"vdm-generator/internal/schema"
	"vdm-generator/internal/vdm"
)

func salesOrderService() *schema.Service {
	return &schema.Service{
		Identifier: "API_SALES_ORDER_SRV",
		Format:     schema.FormatEDMX,
		Entities: []schema.EntityType{
			{
				Name:  "A_SalesOrderType",
				Label: "Sales Order",
				Keys:  []string{"SalesOrder"},
				Properties: []schema.Property{
					{Name: "SalesOrder", Type: "Edm.String"},
					{Name: "to_SalesOrder", Type: "Edm.String", Nullable: true},
				},
				NavigationProperties: []schema.NavigationProperty{
					{Name: "to_Item", Target: "A_SalesOrderItemType", Many: true},
					{Name: "to_Missing", Target: "A_Unknown"},
				},
			},
			{
				Name: "A_SalesOrderItemType",
				Keys: []string{"SalesOrderItem"},
				Properties: []schema.Property{
					{Name: "SalesOrderItem", Type: "Edm.String"},
					{Name: "AllFields", Type: "Edm.Boolean"},
					{Name: "VersionIdentifier", Type: "Edm.String"},
				},
			},
		},
		Operations: []schema.Operation{
			{
				Name:       "CancelItem",
				HTTPMethod: "POST",
				ReturnType: "API_SALES_ORDER_SRV.A_SalesOrderItemType",
				Parameters: []schema.Parameter{
					{Name: "MaterialDocumentYear", Type: "Edm.String"},
					{Name: "MaterialDocument", Type: "Edm.String"},
					{Name: "materialDocument", Type: "Edm.String"},
				},
			},
		},
	}
}

func defaultOptions() Options {
	return Options{
		Strategy:            naming.NewDomainStrategy(naming.Java, naming.SourceName, naming.DefaultDomainOptions()),
		Equality:            naming.CaseInsensitive,
		ReservedMemberNames: []string{"ALL_FIELDS"},
		BaseMembers:         []naming.Member{{Name: "getVersionIdentifier", Visibility: naming.Public}},
		Inflector:           naming.NewInflector(naming.DefaultConfig()),
		ServiceNames:        mapping.ServiceNames{ClassName: "SalesOrderService", PackageName: "salesorder"},
		PackagePrefix:       "com.example.vdm",
	}
}

func TestApply_NamesEveryElement(t *testing.T) {
	model, err := Apply(context.Background(), salesOrderService(), defaultOptions())
	require.NoError(t, err)

	assert.Equal(t, "API_SALES_ORDER_SRV", model.ServiceID)
	assert.Equal(t, "SalesOrderService", model.ServiceClass)
	assert.Equal(t, "com.example.vdm.salesorder", model.Package)
	assert.Equal(t, "edmx", model.Format)
	require.Len(t, model.Entities, 2)

	order := model.Entities[0]
	assert.Equal(t, "SalesOrder", order.ClassName)
	assert.Equal(t, "SalesOrderFluentHelper", order.FluentHelperClass)
	assert.Equal(t, "getAllSalesOrders", order.CollectionMethod)
	assert.Equal(t, "getSalesOrderByKey", order.ByKeyMethod)

	assert.Equal(t, []vdm.Property{
		{Source: "SalesOrder", Field: "salesOrder", Constant: "SALES_ORDER", BuilderMethod: "salesOrder", JavaType: "String", Key: true},
		{Source: "to_SalesOrder", Field: "salesOrder_2", Constant: "SALES_ORDER_2", BuilderMethod: "salesOrder_2", JavaType: "String", Nullable: true},
	}, order.Properties)

	// Navigation to an entity outside the model is skipped.
	assert.Equal(t, []vdm.Navigation{
		{Source: "to_Item", Field: "toItem", Constant: "TO_ITEM", Method: "item", Target: "SalesOrderItem", Many: true},
	}, order.Navigations)

	item := model.Entities[1]
	assert.Equal(t, "SalesOrderItem", item.ClassName)
	assert.Equal(t, "getAllSalesOrderItems", item.CollectionMethod)
	assert.Equal(t, "allFields", item.Properties[1].Field)
	assert.Equal(t, "ALL_FIELDS_2", item.Properties[1].Constant)
	assert.Equal(t, "Boolean", item.Properties[1].JavaType)
	assert.Equal(t, "versionIdentifier_2", item.Properties[2].Field)

	require.Len(t, model.Operations, 1)
	op := model.Operations[0]
	assert.Equal(t, "cancelItem", op.Method)
	assert.Equal(t, "SalesOrderItem", op.ReturnType)
	var params []string
	for _, p := range op.Parameters {
		params = append(params, p.Name)
	}
	assert.Equal(t, []string{"materialDocumentYear", "materialDocument", "materialDocument_2"}, params)
	assert.Equal(t, [][]vdm.Parameter{op.Parameters}, op.Overloads)
}

func TestApply_Idempotent(t *testing.T) {
	first, err := Apply(context.Background(), salesOrderService(), defaultOptions())
	require.NoError(t, err)
	second, err := Apply(context.Background(), salesOrderService(), defaultOptions())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestApply_ClassCollisions(t *testing.T) {
	svc := &schema.Service{
		Identifier: "API_X_SRV",
		Entities: []schema.EntityType{
			{Name: "A_PartnerType"},
			{Name: "A_Partner"},
			{Name: "XService"},
		},
	}
	opts := defaultOptions()
	opts.Inflector = nil
	opts.ServiceNames = mapping.ServiceNames{ClassName: "XService", PackageName: "x"}

	model, err := Apply(context.Background(), svc, opts)
	require.NoError(t, err)

	var classes []string
	for _, e := range model.Entities {
		classes = append(classes, e.ClassName, e.FluentHelperClass)
	}
	assert.Equal(t, []string{
		"Partner", "PartnerFluentHelper",
		"Partner_2", "PartnerFluentHelper_2",
		"XService_2", "XServiceFluentHelper",
	}, classes)
	assert.Equal(t, "getAllPartner", model.Entities[0].CollectionMethod)
	assert.Empty(t, model.Entities[0].ByKeyMethod)
}

func TestApply_ResolvesLegacyOverloads(t *testing.T) {
	lookup := legacy.LookupFunc(func(className string) (*legacy.ClassSignature, error) {
		if className != "com.example.vdm.salesorder.SalesOrderService" {
			return nil, legacy.ErrClassNotFound
		}
		return &legacy.ClassSignature{
			Name: "SalesOrderService",
			Methods: []legacy.MethodSignature{
				{Name: "cancelItem", Visibility: naming.Public, Params: []string{"materialDocument"}},
			},
		}, nil
	})
	opts := defaultOptions()
	opts.Lookup = lookup

	model, err := Apply(context.Background(), salesOrderService(), opts)
	require.NoError(t, err)

	overloads := model.Operations[0].Overloads
	require.Len(t, overloads, 2)
	assert.Len(t, overloads[0], 1)
	assert.Equal(t, "materialDocument", overloads[0][0].Name)
	assert.Len(t, overloads[1], 3)
	assert.Equal(t, "materialDocumentYear", overloads[1][1].Name)
}

func TestApply_WrapsNamingErrors(t *testing.T) {
	svc := salesOrderService()
	svc.Entities[1].Properties = append(svc.Entities[1].Properties, schema.Property{Name: "###"})

	_, err := Apply(context.Background(), svc, defaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, naming.ErrEmptyResult))
	assert.Contains(t, err.Error(), "entity A_SalesOrderItemType property ###")
}

func TestApply_MissingLegacyParameterIsFatal(t *testing.T) {
	opts := defaultOptions()
	opts.Lookup = legacy.LookupFunc(func(string) (*legacy.ClassSignature, error) {
		return &legacy.ClassSignature{
			Name:    "SalesOrderService",
			Methods: []legacy.MethodSignature{{Name: "cancelItem", Params: []string{"fiscalYear"}}},
		}, nil
	})

	_, err := Apply(context.Background(), salesOrderService(), opts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, naming.ErrMissingLegacyParameter))
	assert.Contains(t, err.Error(), "operation CancelItem")
}

func TestApply_RequiresStrategy(t *testing.T) {
	_, err := Apply(context.Background(), salesOrderService(), Options{})
	assert.ErrorIs(t, err, ErrNoStrategy)
}

type countingRecorder struct {
	resolved   map[naming.Kind]int
	collisions int
	failures   int
	overloads  int
}

func (r *countingRecorder) IdentifierResolved(_ context.Context, kind naming.Kind, collided bool) {
	if r.resolved == nil {
		r.resolved = make(map[naming.Kind]int)
	}
	r.resolved[kind]++
	if collided {
		r.collisions++
	}
}

func (r *countingRecorder) NamingFailed(context.Context, naming.Kind) { r.failures++ }

func (r *countingRecorder) OverloadsResolved(_ context.Context, count int) { r.overloads += count }

func TestApply_RecordsDecisions(t *testing.T) {
	rec := &countingRecorder{}
	opts := defaultOptions()
	opts.Recorder = rec

	_, err := Apply(context.Background(), salesOrderService(), opts)
	require.NoError(t, err)

	assert.Equal(t, 2, rec.resolved[naming.KindClass])
	assert.Equal(t, 5, rec.resolved[naming.KindField])
	assert.Equal(t, 1, rec.resolved[naming.KindNavigationField])
	assert.Equal(t, 3, rec.resolved[naming.KindMethodParameter])
	// salesOrder_2 x3, ALL_FIELDS_2, versionIdentifier_2, materialDocument_2
	assert.Equal(t, 6, rec.collisions)
	assert.Equal(t, 0, rec.failures)
	assert.Equal(t, 1, rec.overloads)
}
