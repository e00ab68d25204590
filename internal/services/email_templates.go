package services

import (
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"
)

const imagePlaceholder = "https://via.placeholder.com/60x60/e5e7eb/6b7280?text=Produto"

var ptMonths = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// formatDatePT renders t the way pt-PT long dates read, e.g.
// "5 de março de 2025 às 14:05".
func formatDatePT(t time.Time) string {
	var b strings.Builder
	b.WriteString(t.Format("2"))
	b.WriteString(" de ")
	b.WriteString(ptMonths[t.Month()-1])
	b.WriteString(" de ")
	b.WriteString(t.Format("2006"))
	b.WriteString(" às ")
	b.WriteString(t.Format("15:04"))
	return b.String()
}

// emailView is what both templates render.
type emailView struct {
	FirstName      string
	OrderName      string
	OrderDate      string
	Total          string
	Items          []emailItem
	Pickup         bool
	PickupDate     string
	PickupTime     string
	HasAddress     bool
	AddressName    string
	AddressLine    string
	AddressZipCity string
	AddressCountry string
}

type emailItem struct {
	Title        string
	VariantTitle string
	Quantity     int
	Price        string
	Image        string
}

var confirmationHTML = htmltemplate.Must(htmltemplate.New("confirmation.html").Parse(`<!DOCTYPE html>
<html lang="pt">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Confirmação de Encomenda - TupperStock</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #374151; margin: 0; padding: 0; background-color: #f9fafb;">
  <table width="100%" cellpadding="0" cellspacing="0" style="background-color: #f9fafb;">
    <tr>
      <td align="center" style="padding: 20px;">
        <table width="600" cellpadding="0" cellspacing="0" style="background-color: #ffffff; border-radius: 8px; max-width: 100%;">
          <tr>
            <td style="border-bottom: 2px solid #e5e7eb; padding: 32px 20px; text-align: center;">
              <h1 style="margin: 0; font-size: 28px; font-weight: 700; color: #374151;">TupperStock</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 40px 20px;">
              <h2 style="margin: 0 0 8px 0; text-align: center; font-size: 24px;">Encomenda Confirmada!</h2>
              <p style="margin: 0 0 32px 0; text-align: center; color: #6b7280;">Obrigado {{.FirstName}}!</p>

              <table width="100%" cellpadding="0" cellspacing="0" style="background-color: #f9fafb; border-radius: 8px; margin-bottom: 24px;">
                <tr>
                  <td style="padding: 24px;">
                    <h3 style="margin: 0 0 16px 0; font-size: 18px;">Detalhes da Encomenda</h3>
                    <table width="100%" cellpadding="0" cellspacing="0">
                      <tr>
                        <td width="50%" style="vertical-align: top;">
                          <p style="margin: 0; color: #6b7280; font-size: 14px; text-transform: uppercase;">Número da Encomenda</p>
                          <p style="margin: 4px 0 0 0; font-weight: 600;">{{.OrderName}}</p>
                        </td>
                        <td width="50%" style="vertical-align: top;">
                          <p style="margin: 0; color: #6b7280; font-size: 14px; text-transform: uppercase;">Data da Encomenda</p>
                          <p style="margin: 4px 0 0 0; font-weight: 600;">{{.OrderDate}}</p>
                        </td>
                      </tr>
                    </table>
                  </td>
                </tr>
              </table>

              <h3 style="margin: 0 0 16px 0; font-size: 18px;">Produtos Encomendados</h3>
              <table width="100%" cellpadding="0" cellspacing="0" style="border-collapse: collapse; margin-bottom: 24px;">
                {{- range .Items}}
                <tr style="border-bottom: 1px solid #e5e7eb;">
                  <td style="padding: 12px 0; width: 60px; vertical-align: top;">
                    <img src="{{.Image}}" alt="{{.Title}}" style="width: 60px; height: 60px; border-radius: 8px; border: 1px solid #e5e7eb; display: block;">
                  </td>
                  <td style="padding: 12px 0 12px 16px; vertical-align: top;">
                    <div style="font-weight: 500; margin-bottom: 4px;">{{.Title}}</div>
                    {{- if .VariantTitle}}
                    <div style="font-size: 14px; color: #6b7280; margin-bottom: 8px;">{{.VariantTitle}}</div>
                    {{- end}}
                    <div style="font-size: 14px; color: #6b7280;"><strong>Qtd:</strong> {{.Quantity}} | <strong>Preço:</strong> {{.Price}}€</div>
                  </td>
                </tr>
                {{- end}}
              </table>

              <table width="100%" cellpadding="0" cellspacing="0" style="border-top: 2px solid #e5e7eb; margin-bottom: 24px;">
                <tr>
                  <td style="padding-top: 16px; font-size: 18px; font-weight: 600;">Total:</td>
                  <td style="padding-top: 16px; font-size: 24px; font-weight: 700; color: #000000; text-align: right;">{{.Total}}€</td>
                </tr>
              </table>

              <table width="100%" cellpadding="0" cellspacing="0" style="background-color: #f3f4f6; border-radius: 8px; margin: 20px 0;">
                <tr>
                  <td style="padding: 16px;">
                  {{- if .Pickup}}
                    <h3 style="margin: 0 0 12px 0; font-size: 16px;">📦 Informações de Levantamento</h3>
                    <p style="margin: 0; color: #6b7280;"><strong>Horário:</strong> Segunda a sexta, das 17:00 às 20:00, com marcação.</p>
                  {{- else}}
                    <h3 style="margin: 0 0 12px 0; font-size: 16px;">🚚 Informações de Entrega</h3>
                    <p style="margin: 0; color: #6b7280;">
                      <strong>Tipo:</strong> Entrega ao Domicílio<br>
                      {{- if .HasAddress}}
                      <strong>Morada:</strong><br>
                      {{.AddressName}}<br>
                      {{.AddressLine}}<br>
                      {{.AddressZipCity}}<br>
                      {{.AddressCountry}}
                      {{- end}}
                    </p>
                  {{- end}}
                  </td>
                </tr>
              </table>

              <table width="100%" cellpadding="0" cellspacing="0" style="background-color: #f3f4f6; border-radius: 8px; margin-top: 32px;">
                <tr>
                  <td style="padding: 20px;">
                    <h3 style="margin: 0 0 12px 0; font-size: 16px;">📋 Termos de Pagamento e Entrega</h3>
                    <p style="margin: 0 0 8px 0; color: #6b7280; font-size: 14px;"><strong>Pagamento:</strong> O pagamento é efetuado no ato da entrega.</p>
                    <p style="margin: 0 0 8px 0; color: #6b7280; font-size: 14px;"><strong>Tempo de Entrega:</strong> A entrega demora até 10 dias úteis.</p>
                    <p style="margin: 0; color: #6b7280; font-size: 14px;"><strong>Prazo de Entrega:</strong> Caso a encomenda não seja entregue no prazo de 4 semanas devido à falta de comunicação por parte do cliente, o artigo será automaticamente devolvido ao stock. A partir desse momento, ficará disponível para qualquer outro interessado, não sendo garantida a disponibilidade do produto para o cliente que efetuou a encomenda inicialmente.</p>
                    <p style="margin: 16px 0 0 0; padding-top: 16px; border-top: 1px solid #d1d5db; color: #6b7280; font-size: 14px;"><strong>Contacto:</strong> 917 391 005 | <strong>Email:</strong> contacto@tupperstock.com</p>
                  </td>
                </tr>
              </table>
            </td>
          </tr>
          <tr>
            <td style="background-color: #374151; color: #d1d5db; padding: 24px 20px; text-align: center;">
              <p style="margin: 0 0 8px 0; font-size: 14px;">Obrigado por escolher a TupperStock!</p>
              <p style="margin: 0; font-size: 12px;">© TupperStock - Tupperware Stock Açores. Todos os direitos reservados.</p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>
`))

var confirmationText = texttemplate.Must(texttemplate.New("confirmation.txt").Parse(`TupperStock - Confirmação de Encomenda

Olá {{.FirstName}},

A sua encomenda foi confirmada com sucesso!

Detalhes da Encomenda:
- Número: {{.OrderName}}
- Data: {{.OrderDate}}
- Total: {{.Total}}€

Produtos Encomendados:
{{- range .Items}}
- {{.Title}}{{if .VariantTitle}} ({{.VariantTitle}}){{end}} - Qtd: {{.Quantity}} - {{.Price}}€
{{- end}}

{{if .Pickup -}}
Tipo de Entrega: Levantamento Local
{{- if .PickupDate}}
Data: {{.PickupDate}}
Hora: {{.PickupTime}}
{{- end}}
{{- else -}}
Tipo de Entrega: Entrega ao Domicílio
{{- if .HasAddress}}
Morada:
{{.AddressName}}
{{.AddressLine}}
{{.AddressZipCity}}
{{.AddressCountry}}
{{- end}}
{{- end}}

Pagamento: O pagamento é efetuado no ato da entrega.
Tempo de Entrega: A entrega demora até 10 dias úteis.
Contacto: 917 391 005 | Email: contacto@tupperstock.com

Obrigado pela sua compra!

TupperStock - Tupperware Stock Açores
`))
