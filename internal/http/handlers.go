package http

import (
	"os"

	"github.com/gofiber/fiber/v2"

	"github.com/storewatch/store-uptime-monitor/internal/domain"
	"github.com/storewatch/store-uptime-monitor/internal/service"
)

func Register(app *fiber.App, svcs *service.Services) {
	g := app.Group("/")

	g.Post("trigger_report", func(c *fiber.Ctx) error {
		reportID, err := svcs.Reports.Trigger()
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{
			"report_id": reportID,
			"status":    domain.ReportRunning,
		})
	})

	g.Get("get_report/:report_id", func(c *fiber.Ctx) error {
		rep, err := svcs.Reports.GetReport(c.Params("report_id"))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		if rep == nil {
			return c.Status(404).JSON(fiber.Map{"error": "report not found"})
		}
		switch rep.Status {
		case domain.ReportRunning:
			return c.JSON(fiber.Map{"status": domain.ReportRunning})
		case domain.ReportFailed:
			return c.Status(500).JSON(fiber.Map{"status": domain.ReportFailed})
		case domain.ReportComplete:
			if svcs.Reports.CloudEnabled() {
				if url, err := svcs.Reports.CloudURL(rep.ReportID); err == nil {
					return c.JSON(fiber.Map{
						"status":       domain.ReportComplete,
						"download_url": url,
					})
				}
			}
			if rep.Path != "" {
				if _, err := os.Stat(rep.Path); err == nil {
					return c.Download(rep.Path, "store_report_"+rep.ReportID+".csv")
				}
			}
			if svcs.Reports.CloudEnabled() {
				if data, err := svcs.Reports.CloudFetch(rep.ReportID); err == nil {
					c.Set(fiber.HeaderContentType, "text/csv")
					c.Set(fiber.HeaderContentDisposition, `attachment; filename="store_report_`+rep.ReportID+`.csv"`)
					return c.Send(data)
				}
			}
			return c.Status(500).JSON(fiber.Map{"error": "report file missing"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "unknown report status " + rep.Status})
	})

	g.Get("reports", func(c *fiber.Ctx) error {
		items, err := svcs.Reports.ListReports()
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"reports": items, "count": len(items)})
	})
}
