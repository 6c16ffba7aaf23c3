package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Fields is the per-type field set of a node. Implementations are value
// types so a copied Node never aliases another node's fields.
type Fields interface {
	// Type is the node type this variant belongs to.
	Type() NodeType
	// Name is the value of the variant's name field.
	Name() string
	// NameField is the JSON key of the name field.
	NameField() string
	// WithName returns a copy with the name field set.
	WithName(name string) Fields
}

// TextBearer is implemented by variants with a free-text field that may
// carry {{variable}} references.
type TextBearer interface {
	Fields
	PrimaryText() string
	WithPrimaryText(text string) Fields
}

// InputFields belong to customInput nodes. InputType is Text or File.
type InputFields struct {
	InputName string `json:"inputName" yaml:"inputName"`
	InputType string `json:"inputType" yaml:"inputType" validate:"oneof=Text File"`
}

func (InputFields) Type() NodeType { return NodeTypeInput }
func (f InputFields) Name() string { return f.InputName }
func (InputFields) NameField() string { return "inputName" }
func (f InputFields) WithName(name string) Fields {
	f.InputName = name
	return f
}

// OutputFields belong to customOutput nodes. OutputType is Text or Image.
type OutputFields struct {
	OutputName string `json:"outputName" yaml:"outputName"`
	OutputType string `json:"outputType" yaml:"outputType" validate:"oneof=Text Image"`
}

func (OutputFields) Type() NodeType { return NodeTypeOutput }
func (f OutputFields) Name() string { return f.OutputName }
func (OutputFields) NameField() string { return "outputName" }
func (f OutputFields) WithName(name string) Fields {
	f.OutputName = name
	return f
}

// TextFields belong to text nodes; Text may reference {{variables}}.
type TextFields struct {
	OutputName string `json:"outputName" yaml:"outputName"`
	Text       string `json:"text" yaml:"text"`
}

func (TextFields) Type() NodeType { return NodeTypeText }
func (f TextFields) Name() string { return f.OutputName }
func (TextFields) NameField() string { return "outputName" }
func (f TextFields) WithName(name string) Fields {
	f.OutputName = name
	return f
}
func (f TextFields) PrimaryText() string { return f.Text }
func (f TextFields) WithPrimaryText(text string) Fields {
	f.Text = text
	return f
}

// MathFields belong to math nodes; Expression may reference {{variables}}.
type MathFields struct {
	InputName  string `json:"inputName" yaml:"inputName"`
	Expression string `json:"expression" yaml:"expression"`
}

func (MathFields) Type() NodeType { return NodeTypeMath }
func (f MathFields) Name() string { return f.InputName }
func (MathFields) NameField() string { return "inputName" }
func (f MathFields) WithName(name string) Fields {
	f.InputName = name
	return f
}
func (f MathFields) PrimaryText() string { return f.Expression }
func (f MathFields) WithPrimaryText(text string) Fields {
	f.Expression = text
	return f
}

// LLMFields belong to llm nodes; Prompt may reference {{variables}}.
type LLMFields struct {
	OutputName   string `json:"outputName" yaml:"outputName"`
	Prompt       string `json:"prompt" yaml:"prompt"`
	FormatOutput bool   `json:"formatOutput" yaml:"formatOutput"`
}

func (LLMFields) Type() NodeType { return NodeTypeLLM }
func (f LLMFields) Name() string { return f.OutputName }
func (LLMFields) NameField() string { return "outputName" }
func (f LLMFields) WithName(name string) Fields {
	f.OutputName = name
	return f
}
func (f LLMFields) PrimaryText() string { return f.Prompt }
func (f LLMFields) WithPrimaryText(text string) Fields {
	f.Prompt = text
	return f
}

// DefaultFields returns the field set a freshly dropped node of type t
// starts with, or nil for an unknown type.
func DefaultFields(t NodeType) Fields {
	switch t {
	case NodeTypeInput:
		return InputFields{InputType: "Text"}
	case NodeTypeOutput:
		return OutputFields{OutputType: "Text"}
	case NodeTypeText:
		return TextFields{}
	case NodeTypeMath:
		return MathFields{}
	case NodeTypeLLM:
		return LLMFields{}
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func validateFields(f Fields) error {
	if err := validate.Struct(f); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidFields, describe(err))
	}
	return nil
}

// describe flattens validator errors into "field: tag" pairs.
func describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msg := ""
	for i, fe := range verrs {
		if i > 0 {
			msg += "; "
		}
		msg += fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
	}
	return msg
}

func decodeFields(t NodeType, data json.RawMessage) (Fields, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: unknown node type %q", ErrInvalidArgument, t)
	}
	if len(data) == 0 || string(data) == "null" {
		return DefaultFields(t), nil
	}
	var (
		f   Fields
		err error
	)
	switch t {
	case NodeTypeInput:
		v := DefaultFields(t).(InputFields)
		err = json.Unmarshal(data, &v)
		f = v
	case NodeTypeOutput:
		v := DefaultFields(t).(OutputFields)
		err = json.Unmarshal(data, &v)
		f = v
	case NodeTypeText:
		v := DefaultFields(t).(TextFields)
		err = json.Unmarshal(data, &v)
		f = v
	case NodeTypeMath:
		v := DefaultFields(t).(MathFields)
		err = json.Unmarshal(data, &v)
		f = v
	case NodeTypeLLM:
		v := DefaultFields(t).(LLMFields)
		err = json.Unmarshal(data, &v)
		f = v
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s fields: %w", t, err)
	}
	return f, nil
}
