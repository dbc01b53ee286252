package models

// Intent is a named request to perform an action, with free-form parameters.
type Intent struct {
	// Name selects the action kind, e.g. "create_file".
	Name string `json:"intent" yaml:"intent"`
	// Params carries the raw parameters supplied by the caller.
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
}

// Clone returns a copy of the intent with its own parameter map.
func (i Intent) Clone() Intent {
	c := Intent{Name: i.Name}
	if i.Params != nil {
		c.Params = make(map[string]any, len(i.Params))
		for k, v := range i.Params {
			c.Params[k] = v
		}
	}
	return c
}

// ActionType identifies a concrete action kind.
type ActionType string

const (
	ActionCreateFile     ActionType = "create_file"
	ActionAnalyzeText    ActionType = "analyze_text"
	ActionInspectZip     ActionType = "inspect_zip"
	ActionAnswerQuestion ActionType = "answer_question"
	ActionListDirectory  ActionType = "list_directory"
	ActionWriteCode      ActionType = "write_code"
)

// Action is a validated, tool-bound intent ready for invocation.
type Action struct {
	// Type is the action kind.
	Type ActionType `json:"type"`
	// Tool is the registry name of the capability that handles this action.
	Tool string `json:"tool"`
	// Params holds the typed parameters for Type.
	Params ActionParams `json:"params"`
}

// ActionParams is implemented by the typed parameter struct of each action kind.
// The set is closed: only types in this package satisfy it.
type ActionParams interface {
	actionType() ActionType
}

// CreateFileParams are the parameters of create_file.
type CreateFileParams struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// AnalyzeTextParams are the parameters of analyze_text.
type AnalyzeTextParams struct {
	Path string `json:"path"`
}

// InspectZipParams are the parameters of inspect_zip.
type InspectZipParams struct {
	ZipPath string `json:"zip_path"`
}

// AnswerQuestionParams are the parameters of answer_question.
type AnswerQuestionParams struct {
	Question string `json:"question"`
}

// ListDirectoryParams are the parameters of list_directory.
type ListDirectoryParams struct {
	Path string `json:"path"`
}

// CodeOperation selects how write_code treats an existing file.
type CodeOperation string

const (
	CodeGenerate CodeOperation = "generate"
	CodeModify   CodeOperation = "modify"
)

// WriteCodeParams are the parameters of write_code.
type WriteCodeParams struct {
	Path      string        `json:"path"`
	Content   string        `json:"content"`
	Operation CodeOperation `json:"operation"`
}

func (CreateFileParams) actionType() ActionType     { return ActionCreateFile }
func (AnalyzeTextParams) actionType() ActionType    { return ActionAnalyzeText }
func (InspectZipParams) actionType() ActionType     { return ActionInspectZip }
func (AnswerQuestionParams) actionType() ActionType { return ActionAnswerQuestion }
func (ListDirectoryParams) actionType() ActionType  { return ActionListDirectory }
func (WriteCodeParams) actionType() ActionType      { return ActionWriteCode }

// ParamsType reports the action kind a parameter struct belongs to.
func ParamsType(p ActionParams) ActionType {
	if p == nil {
		return ""
	}
	return p.actionType()
}
