package model

import "gorm.io/gorm"

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Code{}); err != nil {
		return err
	}

	if err := db.AutoMigrate(&ArticleVersion{}); err != nil {
		return err
	}

	if err := db.AutoMigrate(&AmendmentApplication{}); err != nil {
		return err
	}

	return nil
}
