package tester

import (
	"os"

	"github.com/lexhist/lexhist/internal/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	testPath = "../../.test/"
)

var (
	db *gorm.DB
)

// Setup opens a fresh sqlite database for one test package. The name keeps
// packages running in parallel out of each other's files.
func Setup(name string) {
	_ = os.Setenv("ENV", "test")

	err := os.MkdirAll(testPath+"db", os.ModePerm)
	if err != nil {
		panic(err)
	}

	path := testPath + "db/" + name + ".db"
	if err := os.RemoveAll(path); err != nil {
		panic(err)
	}

	db, err = gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	err = model.Migrate(db)
	if err != nil {
		panic(err)
	}
}

func TestDB() *gorm.DB {
	return db
}
