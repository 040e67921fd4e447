package tools

// Tool names.
const (
	ExecuteCommandTool = "execute_command"
	ReadFileTool       = "read_file"
	DisplayTreeTool    = "display_tree"
)

// ToolSpec describes a tool.
type ToolSpec struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  []ToolParameter `json:"parameters"`
	ReadOnly    bool            `json:"-"`
}

// ToolParameter defines a parameter for a tool.
type ToolParameter struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// InputSchema renders the parameters as a JSON Schema object.
func (s ToolSpec) InputSchema() map[string]any {
	props := make(map[string]any, len(s.Parameters))
	var required []string
	for _, p := range s.Parameters {
		props[p.Name] = map[string]any{
			"type":        p.Type,
			"description": p.Description,
		}
		if p.Required {
			required = append(required, p.Name)
		}
	}
	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// NewExecuteCommandToolSpec creates the definition of execute_command.
func NewExecuteCommandToolSpec() ToolSpec {
	return ToolSpec{
		Name:        ExecuteCommandTool,
		Description: `Run one sandbox command: "src -> dest", "path ×", "path += \"text\"", "path = \"text\"", "touch path" or "mkdir path". Returns the result message or the error kind.`,
		Parameters: []ToolParameter{
			{
				Name:        "command",
				Type:        "string",
				Description: "The command line to execute",
				Required:    true,
			},
		},
	}
}

// NewReadFileToolSpec creates the definition of read_file.
func NewReadFileToolSpec() ToolSpec {
	return ToolSpec{
		Name:        ReadFileTool,
		Description: "Read a visible file. Binary and unknown files return a placeholder instead of content.",
		Parameters: []ToolParameter{
			{
				Name:        "path",
				Type:        "string",
				Description: "Path relative to the sandbox root",
				Required:    true,
			},
		},
		ReadOnly: true,
	}
}

// NewDisplayTreeToolSpec creates the definition of display_tree.
func NewDisplayTreeToolSpec() ToolSpec {
	return ToolSpec{
		Name:        DisplayTreeTool,
		Description: "Render the visible directory tree with content previews where allowed.",
		Parameters: []ToolParameter{
			{
				Name:        "max_lines",
				Type:        "integer",
				Description: "Preview lines per file; 0 shows all (default 5)",
			},
			{
				Name:        "show_sizes",
				Type:        "boolean",
				Description: "Append file sizes",
			},
		},
		ReadOnly: true,
	}
}

// DefaultToolSpecs returns the specs of every sandbox tool.
func DefaultToolSpecs() []ToolSpec {
	return []ToolSpec{
		NewExecuteCommandToolSpec(),
		NewReadFileToolSpec(),
		NewDisplayTreeToolSpec(),
	}
}
