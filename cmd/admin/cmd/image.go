package cmd

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/stockkeeper/internal/netx"
	"github.com/dmitrijs2005/stockkeeper/internal/server/config"
	"github.com/dmitrijs2005/stockkeeper/internal/server/models"
	"github.com/dmitrijs2005/stockkeeper/internal/server/services"
	"github.com/spf13/cobra"
)

type imageUploader interface {
	UploadURL(ctx context.Context, userID, contentType string) (*models.ImageUpload, error)
}

var (
	newImageUploader = func(c *config.Config) imageUploader { return services.NewImageService(c) }
	putPresigned     = netx.PutPresigned
)

func detectContentType(path string, data []byte) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}

func newImageCmd(opts *rootOptions) *cobra.Command {
	image := &cobra.Command{
		Use:   "image",
		Short: "Manage product images in object storage",
	}

	var userID, contentType string
	upload := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload an image on behalf of a user and print its key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if contentType == "" {
				contentType = detectContentType(args[0], data)
			}

			c, err := opts.load()
			if err != nil {
				return err
			}

			u, err := newImageUploader(c).UploadURL(cmd.Context(), userID, contentType)
			if err != nil {
				return fmt.Errorf("presign error: %w", err)
			}
			if err := putPresigned(cmd.Context(), http.DefaultClient, u.URL, contentType, bytes.NewReader(data)); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), u.Key)
			return nil
		},
	}
	upload.Flags().StringVar(&userID, "user", "", "owner user id")
	upload.Flags().StringVar(&contentType, "content-type", "", "image MIME type, detected from the file when empty")
	_ = upload.MarkFlagRequired("user")

	image.AddCommand(upload)
	return image
}
