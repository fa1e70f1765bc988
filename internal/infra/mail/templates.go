package mail

import (
	"bytes"
	"fmt"
	"html/template"
)

type ItemView struct {
	Name      string
	Quantity  int64
	UnitPrice string
	Total     string
}

// 受付メールに出す項目（金額は整形済み）
type OrderConfirmationView struct {
	OrderID         string
	Items           []ItemView
	Subtotal        string
	Discount        string
	HasDiscount     bool
	VAT             string
	Shipping        string
	Total           string
	ShippingAddress string
	PaymentMethod   string
}

type ShippingNotificationView struct {
	OrderID         string
	TrackingNumber  string
	ShippingAddress string
}

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`<!DOCTYPE html>
<html><body style="font-family:Arial,sans-serif;color:#222">
<h2>Obrigado pela sua encomenda!</h2>
<p>Encomenda <strong>#{{.OrderID}}</strong></p>
<table cellpadding="6" style="border-collapse:collapse">
<tr><th align="left">Produto</th><th>Qtd</th><th align="right">Preço</th><th align="right">Total</th></tr>
{{range .Items}}<tr><td>{{.Name}}</td><td align="center">{{.Quantity}}</td><td align="right">€{{.UnitPrice}}</td><td align="right">€{{.Total}}</td></tr>
{{end}}</table>
<p>Subtotal: €{{.Subtotal}}<br>
{{if .HasDiscount}}Desconto: -€{{.Discount}}<br>{{end}}IVA (23%): €{{.VAT}}<br>
Envio: €{{.Shipping}}<br>
<strong>Total: €{{.Total}}</strong></p>
<p>Morada de envio:<br>{{.ShippingAddress}}</p>
<p>Método de pagamento: {{.PaymentMethod}}</p>
</body></html>`))

var shippingTmpl = template.Must(template.New("shipping").Parse(`<!DOCTYPE html>
<html><body style="font-family:Arial,sans-serif;color:#222">
<h2>A sua encomenda foi enviada!</h2>
<p>Encomenda <strong>#{{.OrderID}}</strong></p>
{{if .TrackingNumber}}<p>Número de seguimento: <strong>{{.TrackingNumber}}</strong></p>{{end}}
<p>Morada de envio:<br>{{.ShippingAddress}}</p>
</body></html>`))

func RenderOrderConfirmation(v OrderConfirmationView) (subject, html string, err error) {
	var buf bytes.Buffer
	if err := confirmationTmpl.Execute(&buf, v); err != nil {
		return "", "", err
	}
	return fmt.Sprintf("Confirmação da encomenda #%s", shortID(v.OrderID)), buf.String(), nil
}

func RenderShippingNotification(v ShippingNotificationView) (subject, html string, err error) {
	var buf bytes.Buffer
	if err := shippingTmpl.Execute(&buf, v); err != nil {
		return "", "", err
	}
	return fmt.Sprintf("Encomenda #%s enviada", shortID(v.OrderID)), buf.String(), nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
