package mask

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	schema "github.com/hanpama/graphmask/internal/schema"
)

// RenderSDL produces SDL for the schema as seen through the view: hidden
// members are simply absent from the output. Built-in scalars, introspection
// types, and the built-in directives are omitted, matching conventional SDL
// dumps. Ordering is deterministic: types and directives sorted by name,
// members in declaration order.
func RenderSDL(v *View) string {
	var b strings.Builder

	for _, t := range v.Types() {
		if schema.IsBuiltIn(t.Name) {
			continue
		}
		switch t.Kind {
		case schema.TypeKindScalar:
			renderScalar(&b, t)
		case schema.TypeKindEnum:
			renderEnum(&b, v, t)
		case schema.TypeKindInputObject:
			renderInputObject(&b, v, t)
		case schema.TypeKindObject:
			renderCompositeType(&b, v, t, "type")
		case schema.TypeKindInterface:
			renderCompositeType(&b, v, t, "interface")
		case schema.TypeKindUnion:
			renderUnion(&b, v, t)
		}
	}

	directives := v.Directives()
	sort.Slice(directives, func(i, j int) bool { return directives[i].Name < directives[j].Name })
	for _, d := range directives {
		switch d.Name {
		case "include", "skip", "meta", "deprecated", "specifiedBy", "oneOf":
			continue
		}
		renderDirective(&b, d)
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func renderDescription(b *strings.Builder, desc string) {
	if desc == "" {
		return
	}
	b.WriteString("\"\"\"\n")
	b.WriteString(strings.ReplaceAll(desc, "\"", "\\\""))
	b.WriteString("\n\"\"\"\n")
}

func renderScalar(b *strings.Builder, t *schema.Type) {
	renderDescription(b, t.Description)
	b.WriteString("scalar ")
	b.WriteString(t.Name)
	if t.SpecifiedByURL != nil {
		fmt.Fprintf(b, " @specifiedBy(url: %q)", *t.SpecifiedByURL)
	}
	b.WriteString("\n\n")
}

func renderEnum(b *strings.Builder, v *View, t *schema.Type) {
	renderDescription(b, t.Description)
	b.WriteString("enum ")
	b.WriteString(t.Name)
	b.WriteString(" {\n")
	for _, val := range v.EnumValues(t) {
		renderDescription(b, val.Description)
		b.WriteString("  ")
		b.WriteString(val.Name)
		renderDeprecation(b, val.IsDeprecated, val.DeprecationReason)
		b.WriteString("\n")
	}
	b.WriteString("}\n\n")
}

func renderInputObject(b *strings.Builder, v *View, t *schema.Type) {
	renderDescription(b, t.Description)
	b.WriteString("input ")
	b.WriteString(t.Name)
	if t.OneOf {
		b.WriteString(" @oneOf")
	}
	b.WriteString(" {\n")
	for _, iv := range v.InputFields(t) {
		renderDescription(b, iv.Description)
		b.WriteString("  ")
		b.WriteString(iv.Name)
		b.WriteString(": ")
		b.WriteString(renderTypeRef(iv.Type))
		if iv.DefaultValue != nil {
			b.WriteString(" = ")
			b.WriteString(renderValue(iv.DefaultValue))
		}
		renderDeprecation(b, iv.IsDeprecated, iv.DeprecationReason)
		b.WriteString("\n")
	}
	b.WriteString("}\n\n")
}

func renderCompositeType(b *strings.Builder, v *View, t *schema.Type, keyword string) {
	renderDescription(b, t.Description)
	b.WriteString(keyword)
	b.WriteString(" ")
	b.WriteString(t.Name)
	if ifaces := v.Interfaces(t); len(ifaces) > 0 {
		b.WriteString(" implements ")
		for i, iface := range ifaces {
			if i > 0 {
				b.WriteString(" & ")
			}
			b.WriteString(iface.Name)
		}
	}
	b.WriteString(" {\n")
	for _, f := range v.Fields(t) {
		if strings.HasPrefix(f.Name, "__") {
			continue
		}
		renderField(b, v, f)
	}
	b.WriteString("}\n\n")
}

func renderUnion(b *strings.Builder, v *View, t *schema.Type) {
	renderDescription(b, t.Description)
	b.WriteString("union ")
	b.WriteString(t.Name)
	b.WriteString(" = ")
	for i, member := range v.PossibleTypes(t) {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(member.Name)
	}
	b.WriteString("\n\n")
}

func renderField(b *strings.Builder, v *View, f *schema.Field) {
	renderDescription(b, f.Description)
	b.WriteString("  ")
	b.WriteString(f.Name)
	if args := v.Arguments(f); len(args) > 0 {
		b.WriteString("(")
		for i, a := range args {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(a.Name)
			b.WriteString(": ")
			b.WriteString(renderTypeRef(a.Type))
			if a.DefaultValue != nil {
				b.WriteString(" = ")
				b.WriteString(renderValue(a.DefaultValue))
			}
		}
		b.WriteString(")")
	}
	b.WriteString(": ")
	b.WriteString(renderTypeRef(f.Type))
	renderDeprecation(b, f.IsDeprecated, f.DeprecationReason)
	b.WriteString("\n")
}

func renderDeprecation(b *strings.Builder, deprecated bool, reason string) {
	if !deprecated {
		return
	}
	b.WriteString(" @deprecated")
	if reason != "" {
		fmt.Fprintf(b, "(reason: %q)", reason)
	}
}

func renderDirective(b *strings.Builder, d *schema.Directive) {
	renderDescription(b, d.Description)
	b.WriteString("directive @")
	b.WriteString(d.Name)
	if len(d.Arguments) > 0 {
		b.WriteString("(")
		for i, a := range d.Arguments {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(a.Name)
			b.WriteString(": ")
			b.WriteString(renderTypeRef(a.Type))
			if a.DefaultValue != nil {
				b.WriteString(" = ")
				b.WriteString(renderValue(a.DefaultValue))
			}
		}
		b.WriteString(")")
	}
	if d.IsRepeatable {
		b.WriteString(" repeatable")
	}
	b.WriteString(" on ")
	b.WriteString(strings.Join(d.Locations, " | "))
	b.WriteString("\n\n")
}

func renderTypeRef(t *schema.TypeRef) string {
	if t == nil {
		return ""
	}
	switch t.Kind {
	case schema.TypeRefKindNonNull:
		return renderTypeRef(t.OfType) + "!"
	case schema.TypeRefKindList:
		return "[" + renderTypeRef(t.OfType) + "]"
	default:
		return t.Named
	}
}

func renderValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(val)
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = renderValue(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + renderValue(val[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprintf("%v", val)
	}
}
