package database

import (
	"fmt"

	"github.com/stackquest/stackquest-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Catalog is the full achievement reference list. Names are the stable
// lookup keys used by the unlock call sites; editing a name here orphans
// existing call sites, so treat them as frozen.
var Catalog = []models.Achievement{
	{Name: "Welcome Aboard", Description: "Signed in for the first time", Points: 5, Category: models.CategorySpecial, Icon: "👋"},
	{Name: "Learning Starter", Description: "Visited your first learning section", Points: 5, Category: models.CategoryLearning, Icon: "📖"},
	{Name: "Learning Master", Description: "Explored five learning sections", Points: 25, Category: models.CategoryLearning, Icon: "🎓"},
	{Name: "First Steps", Description: "Completed a getting-started step", Points: 5, Category: models.CategoryGettingStarted, Icon: "👣"},
	{Name: "Setup Apprentice", Description: "Completed half of the getting-started checklist", Points: 10, Category: models.CategoryGettingStarted, Icon: "🔧"},
	{Name: "Setup Master", Description: "Completed the whole getting-started checklist", Points: 25, Category: models.CategoryGettingStarted, Icon: "🏆"},
	{Name: "Theme Master", Description: "Changed the site theme", Points: 10, Category: models.CategoryTheme, Icon: "🎨"},
	{Name: "Button Masher", Description: "Interacted with the button demo", Points: 5, Category: models.CategoryComponent, Component: "button", Icon: "🖱️"},
	{Name: "Form Wizard", Description: "Submitted the live form demo", Points: 10, Category: models.CategoryComponent, Component: "form", Icon: "🪄"},
	{Name: "Code Validator", Description: "Ran a valid snippet in the playground", Points: 15, Category: models.CategorySpecial, Component: "playground", Icon: "✅"},
}

// Seed inserts any catalog entries that are missing. Existing rows are left
// untouched so point values granted historically stay consistent.
func Seed(db *gorm.DB) error {
	for i := range Catalog {
		achievement := Catalog[i]
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&achievement).Error
		if err != nil {
			return fmt.Errorf("seed achievement %q: %w", achievement.Name, err)
		}
	}
	return nil
}
