package vdm

import "strings"

var edmJavaTypes = map[string]string{
	"Edm.String":         "String",
	"Edm.Boolean":        "Boolean",
	"Edm.Byte":           "Short",
	"Edm.SByte":          "Byte",
	"Edm.Int16":          "Short",
	"Edm.Int32":          "Integer",
	"Edm.Int64":          "Long",
	"Edm.Single":         "Float",
	"Edm.Double":         "Double",
	"Edm.Decimal":        "BigDecimal",
	"Edm.Guid":           "UUID",
	"Edm.Binary":         "byte[]",
	"Edm.DateTime":       "LocalDateTime",
	"Edm.DateTimeOffset": "OffsetDateTime",
	"Edm.Date":           "LocalDate",
	"Edm.Time":           "LocalTime",
	"Edm.TimeOfDay":      "LocalTime",
	"Edm.Duration":       "Duration",
}

var openAPIJavaTypes = map[string]string{
	"string":            "String",
	"string(date)":      "LocalDate",
	"string(date-time)": "OffsetDateTime",
	"string(uuid)":      "UUID",
	"string(byte)":      "byte[]",
	"string(binary)":    "byte[]",
	"boolean":           "Boolean",
	"integer":           "Integer",
	"integer(int32)":    "Integer",
	"integer(int64)":    "Long",
	"number":            "BigDecimal",
	"number(float)":     "Float",
	"number(double)":    "Double",
}

// JavaType maps a schema type to a Java type. classOf resolves the local
// name of an entity type to its generated class.
func JavaType(schemaType string, classOf func(string) (string, bool)) string {
	if strings.HasPrefix(schemaType, "Collection(") && strings.HasSuffix(schemaType, ")") {
		inner := schemaType[len("Collection(") : len(schemaType)-1]
		return "List<" + JavaType(inner, classOf) + ">"
	}
	if t, ok := edmJavaTypes[schemaType]; ok {
		return t
	}
	if t, ok := openAPIJavaTypes[schemaType]; ok {
		return t
	}
	if schemaType == "" {
		return "Void"
	}
	local := schemaType
	if i := strings.LastIndex(local, "."); i >= 0 {
		local = local[i+1:]
	}
	if classOf != nil {
		if class, ok := classOf(local); ok {
			return class
		}
	}
	return "Object"
}
