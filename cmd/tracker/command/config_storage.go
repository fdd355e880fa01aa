package command

import (
	"fmt"
	"os"

	"github.com/pixil98/go-errors"

	"github.com/quickroll/initiative/internal/account"
	"github.com/quickroll/initiative/internal/catalog"
	"github.com/quickroll/initiative/internal/storage"
)

type StorageConfig struct {
	Accounts AssetConfig[*account.DM]       `json:"accounts"`
	Monsters AssetConfig[*catalog.Template] `json:"monsters"`
}

func (c *StorageConfig) Validate() error {
	el := errors.NewErrorList()
	el.Add(c.Accounts.Validate("accounts"))
	el.Add(c.Monsters.Validate("monsters"))
	return el.Err()
}

func (c *StorageConfig) BuildAccountStore() (*storage.FileStore[*account.DM], error) {
	return c.Accounts.BuildFileStore()
}

func (c *StorageConfig) BuildTemplateStore() (*storage.FileStore[*catalog.Template], error) {
	return c.Monsters.BuildFileStore()
}

type AssetConfig[T storage.ValidatingSpec] struct {
	Path string `json:"path"`
}

func (c *AssetConfig[T]) Validate(name string) error {
	if c.Path == "" {
		return fmt.Errorf("%s: path is required", name)
	}
	_, err := os.Stat(c.Path)
	if err != nil {
		return fmt.Errorf("%s: invalid path %q: %w", name, c.Path, err)
	}

	return nil
}

func (c *AssetConfig[T]) BuildFileStore() (*storage.FileStore[T], error) {
	return storage.NewFileStore[T](c.Path)
}
