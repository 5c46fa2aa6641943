package db

import (
	"fmt"

	"craftopia/internal/model"
)

func tables() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Category{},
		&model.Decor{},
	}
}

// Migrate creates or updates the schema for every model.
func (c *Client) Migrate() error {
	if err := c.DB.AutoMigrate(tables()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// Reset drops every table, children first.
func (c *Client) Reset() error {
	all := tables()
	for i := len(all) - 1; i >= 0; i-- {
		if err := c.DB.Migrator().DropTable(all[i]); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}
	return nil
}
