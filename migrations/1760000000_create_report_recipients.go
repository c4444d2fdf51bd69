package migrations

import (
	"github.com/pocketbase/pocketbase/core"
)

func init() {
	core.AppMigrations.Register(func(app core.App) error {
		collection := core.NewBaseCollection("report_recipients")

		collection.Fields.Add(&core.TextField{
			Id:       "rcpt_department",
			Name:     "department",
			Required: true,
			Max:      255,
		})

		collection.Fields.Add(&core.EmailField{
			Id:       "rcpt_email",
			Name:     "email",
			Required: true,
		})

		collection.Fields.Add(&core.BoolField{
			Id:   "rcpt_active",
			Name: "is_active",
		})

		collection.AddIndex("idx_report_recipients_department", true, "department", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("report_recipients")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
