package invoice

import (
	"fmt"

	"github.com/beevik/etree"

	"github.com/Janescience/deliback-sub000/internal/models"
)

// Build renders one order as an XML invoice document. PDF rendering happens
// downstream; this is the canonical document shape the billing tooling reads.
func Build(order *models.Order) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("Invoice")
	root.CreateAttr("number", fmt.Sprintf("INV-%d", order.ID))

	root.CreateElement("IssueDate").SetText(order.CreatedAt.Format("2006-01-02"))
	root.CreateElement("DeliveryDate").SetText(order.DeliveryDate.Format("2006-01-02"))

	customer := root.CreateElement("Customer")
	customer.CreateAttr("id", fmt.Sprintf("%d", order.CustomerID))
	customer.CreateElement("Name").SetText(order.CustomerName)

	lines := root.CreateElement("Lines")
	for _, item := range order.Items {
		line := lines.CreateElement("Line")
		line.CreateAttr("productId", fmt.Sprintf("%d", item.ProductID))
		line.CreateElement("Product").SetText(item.ProductName)
		line.CreateElement("QuantityKg").SetText(fmt.Sprintf("%.2f", item.Quantity))
		line.CreateElement("UnitPrice").SetText(fmt.Sprintf("%.2f", item.UnitPrice))
		line.CreateElement("Subtotal").SetText(fmt.Sprintf("%.2f", item.Subtotal))
	}

	root.CreateElement("Total").SetText(fmt.Sprintf("%.2f", order.TotalAmount))

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize invoice: %w", err)
	}
	return out, nil
}
