package file

import (
	"context"
	"encoding/base64"

	"github.com/slighter12/xano-mcp-go/tools/types"
	"github.com/slighter12/xano-mcp-go/xano"
)

const (
	ListFiles       types.Name = "xano_list_files"
	UploadFile      types.Name = "xano_upload_file"
	DeleteFile      types.Name = "xano_delete_file"
	BulkDeleteFiles types.Name = "xano_bulk_delete_files"
)

type listInput struct {
	types.WorkspaceRef
	types.Paging
	Search string `json:"search"`
	Access string `json:"access"`
	Sort   string `json:"sort"`
	Order  string `json:"order"`
}

type uploadInput struct {
	types.WorkspaceRef
	Filename string `json:"filename"`
	Content  string `json:"content_base64"`
	Type     string `json:"type"`
	Access   string `json:"access"`
}

type deleteInput struct {
	types.WorkspaceRef
	FileID xano.ID `json:"file_id"`
}

type bulkDeleteInput struct {
	types.WorkspaceRef
	FileIDs []xano.ID `json:"file_ids"`
}

func accessProp() types.Props {
	return types.Props{"access": types.Enum("File access level", "public", "private")}
}

// DecodeContent decodes base64 file content, accepting standard and URL
// alphabets with or without padding.
func DecodeContent(parameter, encoded string) ([]byte, error) {
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding,
	} {
		if data, err := enc.DecodeString(encoded); err == nil {
			return data, nil
		}
	}
	return nil, types.NewInvalidParameter(parameter, "base64", "content is not valid base64")
}

func GetAllTools(client *xano.Client) []types.Tool {
	return []types.Tool{
		types.New(ListFiles,
			"List the files stored in a workspace.",
			types.Schema("List Files", types.WorkspaceProps().Merge(types.PagingProps()).Merge(accessProp()).Merge(types.Props{
				"search": types.String("Filter files by name"),
				"sort":   types.String("Field to sort by"),
				"order":  types.Enum("Sort direction", "asc", "desc"),
			}), types.WorkspaceRequired()...),
			func(ctx context.Context, in listInput) (any, error) {
				return client.ListFiles(ctx, in.InstanceName, in.WorkspaceID, xano.FileQuery{
					Paging: in.Paging.Xano(),
					Search: in.Search,
					Access: in.Access,
					Sort:   in.Sort,
					Order:  in.Order,
				})
			}),
		types.New(UploadFile,
			"Upload a file to workspace storage. The content is sent base64 encoded.",
			types.Schema("Upload File", types.WorkspaceProps().Merge(accessProp()).Merge(types.Props{
				"filename":       types.String("Name of the file"),
				"content_base64": types.String("File content, base64 encoded"),
				"type":           types.Enum("Kind of file", "image", "video", "audio", "attachment"),
			}), types.WorkspaceRequired("filename", "content_base64")...),
			func(ctx context.Context, in uploadInput) (any, error) {
				content, err := DecodeContent("content_base64", in.Content)
				if err != nil {
					return nil, err
				}
				return client.UploadFile(ctx, in.InstanceName, in.WorkspaceID, xano.Upload{
					Filename: in.Filename,
					Content:  content,
					Type:     in.Type,
					Access:   in.Access,
				})
			}),
		types.New(DeleteFile,
			"Delete a file from workspace storage.",
			types.Schema("Delete File", types.WorkspaceProps().With("file_id", types.ID("The ID of the file")),
				types.WorkspaceRequired("file_id")...),
			func(ctx context.Context, in deleteInput) (any, error) {
				return client.DeleteFile(ctx, in.InstanceName, in.WorkspaceID, in.FileID)
			}),
		types.New(BulkDeleteFiles,
			"Delete several files from workspace storage.",
			types.Schema("Bulk Delete Files", types.WorkspaceProps().With("file_ids",
				types.Array("IDs of the files to delete", types.ID("File ID"))),
				types.WorkspaceRequired("file_ids")...),
			func(ctx context.Context, in bulkDeleteInput) (any, error) {
				return client.BulkDeleteFiles(ctx, in.InstanceName, in.WorkspaceID, in.FileIDs)
			}),
	}
}
