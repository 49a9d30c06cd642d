package notify

import (
	"bytes"
	"html/template"
	"strconv"

	"frota/internal/model"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Receipt is the data printed on a completed-ride email.
type Receipt struct {
	Code        string
	ScheduledAt string
	Client      string
	CostCenter  string
	Requester   string
	Rider       string
	Unit        string
	FareType    string
	Route       string
	Origin      string
	Destination string
	Price       string
}

var brl = message.NewPrinter(language.BrazilianPortuguese)

// FormatBRL renders an amount as Brazilian currency, e.g. "R$ 1.234,50".
func FormatBRL(amount decimal.Decimal) string {
	f, _ := amount.Round(2).Float64()
	return "R$ " + brl.Sprintf("%.2f", f)
}

// BuildReceipt describes a ride loaded with its associations.
func BuildReceipt(ride *model.Ride) Receipt {
	r := Receipt{
		Code:        strconv.FormatUint(uint64(ride.ID), 10),
		ScheduledAt: ride.ScheduledAt.Format("02/01/2006 15:04"),
		FareType:    ride.FareType.Label(),
		Price:       FormatBRL(ride.Price),
	}
	if ride.Client != nil {
		r.Client = ride.Client.Name
	}
	if ride.CostCenter != nil {
		r.CostCenter = ride.CostCenter.Code + " - " + ride.CostCenter.Description
	}
	if ride.Requester != nil {
		r.Requester = ride.Requester.Name
	}
	if ride.Rider != nil {
		r.Rider = ride.Rider.Name
	}
	if ride.Unit != nil {
		r.Unit = ride.Unit.DisplayName()
	}

	if ride.FareType == model.FareTypeRoute && ride.Route != nil {
		r.Route = ride.Route.Name
		r.Origin = ride.Route.OriginDescription
		r.Destination = ride.Route.DestinationDescription
	} else {
		if ride.StartAddress != nil {
			r.Origin = *ride.StartAddress
		}
		if ride.EndAddress != nil {
			r.Destination = *ride.EndAddress
		}
	}
	return r
}

// Subject is the receipt email subject line.
func (r Receipt) Subject() string {
	return "Corrida Realizada - " + r.Client
}

var receiptTemplate = template.Must(template.New("receipt").Parse(`<html>
<body style="font-family: Arial, sans-serif;">
<h2>Corrida Realizada</h2>
<table cellpadding="4">
<tr><td><strong>Código:</strong></td><td>{{.Code}}</td></tr>
<tr><td><strong>Data/Hora:</strong></td><td>{{.ScheduledAt}}</td></tr>
<tr><td><strong>Cliente:</strong></td><td>{{.Client}}</td></tr>
{{if .CostCenter}}<tr><td><strong>Centro de Custo:</strong></td><td>{{.CostCenter}}</td></tr>
{{end}}<tr><td><strong>Solicitante:</strong></td><td>{{.Requester}}</td></tr>
{{if .Rider}}<tr><td><strong>Usuário:</strong></td><td>{{.Rider}}</td></tr>
{{end}}<tr><td><strong>Unidade:</strong></td><td>{{.Unit}}</td></tr>
<tr><td><strong>Tipo de Tarifa:</strong></td><td>{{.FareType}}</td></tr>
{{if .Route}}<tr><td><strong>Trecho:</strong></td><td>{{.Route}}</td></tr>
{{end}}<tr><td><strong>Origem:</strong></td><td>{{.Origin}}</td></tr>
<tr><td><strong>Destino:</strong></td><td>{{.Destination}}</td></tr>
<tr><td><strong>Valor:</strong></td><td>{{.Price}}</td></tr>
</table>
</body>
</html>`))

// HTML renders the receipt body.
func (r Receipt) HTML() (string, error) {
	var buf bytes.Buffer
	if err := receiptTemplate.Execute(&buf, r); err != nil {
		return "", err
	}
	return buf.String(), nil
}
