package xano

import (
	"context"
	"net/http"
	"strconv"
)

// Export selects what a workspace export contains.
type Export struct {
	Branch   string `json:"branch,omitempty"`
	Password string `json:"password,omitempty"`
}

// ExportWorkspace downloads a full workspace archive.
func (c *Client) ExportWorkspace(ctx context.Context, instance string, workspace ID, export Export) (any, error) {
	return c.Do(ctx, Request{
		Method:   http.MethodPost,
		Instance: instance,
		Path:     workspacePath(workspace, "export"),
		Body:     export,
	})
}

// ExportSchema downloads the schema of a workspace without its data.
func (c *Client) ExportSchema(ctx context.Context, instance string, workspace ID, export Export) (any, error) {
	return c.Do(ctx, Request{
		Method:   http.MethodPost,
		Instance: instance,
		Path:     workspacePath(workspace, "export-schema"),
		Body:     export,
	})
}

// Archive is an export file sent back for import.
type Archive struct {
	Filename string
	Content  []byte
	Password string
}

// ImportWorkspace replaces a workspace with the content of an archive.
func (c *Client) ImportWorkspace(ctx context.Context, instance string, workspace ID, archive Archive) (any, error) {
	fields := map[string]string{}
	if archive.Password != "" {
		fields["password"] = archive.Password
	}
	return c.Do(ctx, Request{
		Method:   http.MethodPost,
		Instance: instance,
		Path:     workspacePath(workspace, "import"),
		Form:     archiveForm(archive, fields),
	})
}

// SchemaImport controls where an imported schema lands.
type SchemaImport struct {
	Archive
	NewBranch string
	SetLive   bool
}

// ImportSchema loads a schema archive into a new branch.
func (c *Client) ImportSchema(ctx context.Context, instance string, workspace ID, imp SchemaImport) (any, error) {
	fields := map[string]string{"setlive": strconv.FormatBool(imp.SetLive)}
	if imp.NewBranch != "" {
		fields["newbranch"] = imp.NewBranch
	}
	if imp.Password != "" {
		fields["password"] = imp.Password
	}
	return c.Do(ctx, Request{
		Method:   http.MethodPost,
		Instance: instance,
		Path:     workspacePath(workspace, "import-schema"),
		Form:     archiveForm(imp.Archive, fields),
	})
}

func archiveForm(archive Archive, fields map[string]string) *Form {
	filename := archive.Filename
	if filename == "" {
		filename = "workspace.tar.gz"
	}
	return &Form{Fields: fields, FileField: "file", Filename: filename, Content: archive.Content}
}
