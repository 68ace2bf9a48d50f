package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/stockroom/app/models"
	"github.com/shashiranjanraj/stockroom/config"
	"github.com/shashiranjanraj/stockroom/pkg/database"
	"github.com/shashiranjanraj/stockroom/pkg/media"
	"github.com/shashiranjanraj/stockroom/pkg/storage"
)

// stockroom images:prune — delete media store objects no product references.
// Orphans appear when a create fails after its image upload, or after a
// crash between upload and insert.
var imagesPruneCmd = &cobra.Command{
	Use:   "images:prune",
	Short: "Delete stored images that no product references",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		storage.Connect()

		var products []models.Product
		if err := database.DB.Select("image_id").Find(&products).Error; err != nil {
			return err
		}
		referenced := make(map[string]bool, len(products))
		for _, p := range products {
			if p.ImageID != "" {
				referenced[p.ImageID] = true
			}
		}

		store := media.NewDiskStore(storage.Default(), config.MediaPrefix())
		removed, err := store.Prune(referenced)
		if err != nil {
			return err
		}

		fmt.Printf("Pruned %d orphaned image(s), %d still referenced.\n", removed, len(referenced))
		return nil
	},
}
