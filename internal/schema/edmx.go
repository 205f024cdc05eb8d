package schema

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoSchema reports a metadata document without any schema.
var ErrNoSchema = errors.New("document declares no schema")

type edmxDocument struct {
	XMLName      xml.Name `xml:"Edmx"`
	Version      string   `xml:"Version,attr"`
	DataServices struct {
		Schemas []edmSchema `xml:"Schema"`
	} `xml:"DataServices"`
}

type edmSchema struct {
	Namespace        string               `xml:"Namespace,attr"`
	Alias            string               `xml:"Alias,attr"`
	EntityTypes      []edmEntityType      `xml:"EntityType"`
	ComplexTypes     []edmEntityType      `xml:"ComplexType"`
	Associations     []edmAssociation     `xml:"Association"`
	EntityContainers []edmEntityContainer `xml:"EntityContainer"`
	Functions        []edmOperation       `xml:"Function"`
	Actions          []edmOperation       `xml:"Action"`
	Annotations      []edmAnnotations     `xml:"Annotations"`
}

type edmEntityType struct {
	Name                 string                  `xml:"Name,attr"`
	Label                string                  `xml:"http://www.sap.com/Protocols/SAPData label,attr"`
	Keys                 []edmPropertyRef        `xml:"Key>PropertyRef"`
	Properties           []edmProperty           `xml:"Property"`
	NavigationProperties []edmNavigationProperty `xml:"NavigationProperty"`
	Annotations          []edmAnnotation         `xml:"Annotation"`
}

type edmPropertyRef struct {
	Name string `xml:"Name,attr"`
}

type edmProperty struct {
	Name        string          `xml:"Name,attr"`
	Type        string          `xml:"Type,attr"`
	Nullable    string          `xml:"Nullable,attr"`
	Label       string          `xml:"http://www.sap.com/Protocols/SAPData label,attr"`
	Annotations []edmAnnotation `xml:"Annotation"`
}

type edmNavigationProperty struct {
	Name         string          `xml:"Name,attr"`
	Type         string          `xml:"Type,attr"`
	Relationship string          `xml:"Relationship,attr"`
	ToRole       string          `xml:"ToRole,attr"`
	Label        string          `xml:"http://www.sap.com/Protocols/SAPData label,attr"`
	Annotations  []edmAnnotation `xml:"Annotation"`
}

type edmAssociation struct {
	Name string   `xml:"Name,attr"`
	Ends []edmEnd `xml:"End"`
}

type edmEnd struct {
	Type         string `xml:"Type,attr"`
	Multiplicity string `xml:"Multiplicity,attr"`
	Role         string `xml:"Role,attr"`
}

type edmEntityContainer struct {
	Name            string              `xml:"Name,attr"`
	FunctionImports []edmFunctionImport `xml:"FunctionImport"`
}

type edmFunctionImport struct {
	Name       string         `xml:"Name,attr"`
	ReturnType string         `xml:"ReturnType,attr"`
	HTTPMethod string         `xml:"http://schemas.microsoft.com/ado/2007/08/dataservices/metadata HttpMethod,attr"`
	Function   string         `xml:"Function,attr"`
	Label      string         `xml:"http://www.sap.com/Protocols/SAPData label,attr"`
	Parameters []edmParameter `xml:"Parameter"`
}

type edmOperation struct {
	Name        string          `xml:"Name,attr"`
	IsBound     bool            `xml:"IsBound,attr"`
	Parameters  []edmParameter  `xml:"Parameter"`
	ReturnType  *edmReturnType  `xml:"ReturnType"`
	Annotations []edmAnnotation `xml:"Annotation"`
}

type edmReturnType struct {
	Type string `xml:"Type,attr"`
}

type edmParameter struct {
	Name        string          `xml:"Name,attr"`
	Type        string          `xml:"Type,attr"`
	Nullable    string          `xml:"Nullable,attr"`
	Label       string          `xml:"http://www.sap.com/Protocols/SAPData label,attr"`
	Annotations []edmAnnotation `xml:"Annotation"`
}

type edmAnnotation struct {
	Term          string `xml:"Term,attr"`
	String        string `xml:"String,attr"`
	StringElement string `xml:"String"`
}

type edmAnnotations struct {
	Target      string          `xml:"Target,attr"`
	Annotations []edmAnnotation `xml:"Annotation"`
}

// ReadEDMX reads an OData V2 or V4 metadata document. Labels come from
// sap:label attributes (V2) or Common.Label annotations (V4). serviceID
// defaults to the namespace of the first schema declaring entity types.
func ReadEDMX(r io.Reader, serviceID string) (*Service, error) {
	var doc edmxDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse EDMX: %w", err)
	}
	schemas := doc.DataServices.Schemas
	if len(schemas) == 0 {
		return nil, fmt.Errorf("parse EDMX: %w", ErrNoSchema)
	}

	svc := &Service{
		Identifier: serviceID,
		Format:     FormatEDMX,
		Version:    doc.Version,
	}

	associations := make(map[string]edmAssociation)
	labels := make(map[string]string)
	for _, s := range schemas {
		for _, a := range s.Associations {
			associations[a.Name] = a
		}
		for _, group := range s.Annotations {
			if label := labelFrom(group.Annotations); label != "" {
				labels[localTarget(group.Target)] = label
			}
		}
	}

	for _, s := range schemas {
		if svc.Namespace == "" && (len(s.EntityTypes) > 0 || len(s.EntityContainers) > 0) {
			svc.Namespace = s.Namespace
		}
		for _, et := range s.EntityTypes {
			svc.Entities = append(svc.Entities, convertEntityType(et, associations, labels))
		}
		for _, ct := range s.ComplexTypes {
			svc.Entities = append(svc.Entities, convertEntityType(ct, associations, labels))
		}
		for _, container := range s.EntityContainers {
			for _, fi := range container.FunctionImports {
				if fi.Function != "" {
					// V4 imports point at a schema-level Function.
					continue
				}
				svc.Operations = append(svc.Operations, convertFunctionImport(fi))
			}
		}
		for _, fn := range s.Functions {
			if !fn.IsBound {
				svc.Operations = append(svc.Operations, convertOperation(fn, "GET", labels))
			}
		}
		for _, action := range s.Actions {
			if !action.IsBound {
				svc.Operations = append(svc.Operations, convertOperation(action, "POST", labels))
			}
		}
	}

	if svc.Identifier == "" {
		svc.Identifier = svc.Namespace
	}
	return svc, nil
}

func convertEntityType(et edmEntityType, associations map[string]edmAssociation, labels map[string]string) EntityType {
	entity := EntityType{
		Name:  et.Name,
		Label: firstNonBlank(et.Label, labelFrom(et.Annotations), labels[et.Name]),
	}
	for _, k := range et.Keys {
		entity.Keys = append(entity.Keys, k.Name)
	}
	for _, p := range et.Properties {
		entity.Properties = append(entity.Properties, Property{
			Name:     p.Name,
			Label:    firstNonBlank(p.Label, labelFrom(p.Annotations), labels[et.Name+"/"+p.Name]),
			Type:     p.Type,
			Nullable: !strings.EqualFold(p.Nullable, "false"),
		})
	}
	for _, np := range et.NavigationProperties {
		target, many := navigationTarget(np, associations)
		entity.NavigationProperties = append(entity.NavigationProperties, NavigationProperty{
			Name:   np.Name,
			Label:  firstNonBlank(np.Label, labelFrom(np.Annotations), labels[et.Name+"/"+np.Name]),
			Target: target,
			Many:   many,
		})
	}
	return entity
}

func navigationTarget(np edmNavigationProperty, associations map[string]edmAssociation) (string, bool) {
	if np.Type != "" {
		inner, many := collectionOf(np.Type)
		return localName(inner), many
	}
	assoc, ok := associations[localName(np.Relationship)]
	if !ok {
		return "", false
	}
	for _, end := range assoc.Ends {
		if end.Role == np.ToRole {
			return localName(end.Type), end.Multiplicity == "*"
		}
	}
	return "", false
}

func convertFunctionImport(fi edmFunctionImport) Operation {
	method := fi.HTTPMethod
	if method == "" {
		method = "GET"
	}
	op := Operation{
		Name:       fi.Name,
		Label:      fi.Label,
		ReturnType: fi.ReturnType,
		HTTPMethod: strings.ToUpper(method),
	}
	for _, p := range fi.Parameters {
		op.Parameters = append(op.Parameters, convertParameter(p, ""))
	}
	return op
}

func convertOperation(o edmOperation, method string, labels map[string]string) Operation {
	op := Operation{
		Name:       o.Name,
		Label:      firstNonBlank(labelFrom(o.Annotations), labels[o.Name]),
		HTTPMethod: method,
	}
	if o.ReturnType != nil {
		op.ReturnType = o.ReturnType.Type
	}
	for _, p := range o.Parameters {
		op.Parameters = append(op.Parameters, convertParameter(p, labels[o.Name+"/"+p.Name]))
	}
	return op
}

func convertParameter(p edmParameter, external string) Parameter {
	return Parameter{
		Name:     p.Name,
		Label:    firstNonBlank(p.Label, labelFrom(p.Annotations), external),
		Type:     p.Type,
		Nullable: !strings.EqualFold(p.Nullable, "false"),
	}
}

// labelFrom returns the value of a Common.Label annotation.
func labelFrom(annotations []edmAnnotation) string {
	for _, a := range annotations {
		if a.Term == "Label" || strings.HasSuffix(a.Term, ".Label") {
			return firstNonBlank(a.String, strings.TrimSpace(a.StringElement))
		}
	}
	return ""
}

// localTarget strips the namespace from an annotation target, keeping any
// member path: "ns.A_Item/Material" -> "A_Item/Material".
func localTarget(target string) string {
	head, member, hasMember := strings.Cut(target, "/")
	head, _, _ = strings.Cut(head, "(")
	head = localName(head)
	if hasMember {
		return head + "/" + member
	}
	return head
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
