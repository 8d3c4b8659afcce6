package store

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/planet-pizzaria/internal/catalog"
	"github.com/noah-isme/planet-pizzaria/internal/customer"
	"github.com/noah-isme/planet-pizzaria/internal/order"
	"github.com/noah-isme/planet-pizzaria/internal/payment"
	"github.com/noah-isme/planet-pizzaria/internal/pricing"
	"github.com/noah-isme/planet-pizzaria/internal/shipping"
)

// legacyDocument is the layout written by the first version of the program, with Portuguese
// keys and plain numbers for money.
type legacyDocument struct {
	Clientes []legacyCliente `json:"clientes"`
	Produtos []legacyProduto `json:"produtos"`
	Pedidos  []legacyPedido  `json:"pedidos"`
}

type legacyCliente struct {
	ID       string `json:"id"`
	CPF      string `json:"cpf"`
	Nome     string `json:"nome"`
	Telefone string `json:"telefone"`
}

type legacyProduto struct {
	ID        string           `json:"id"`
	Nome      string           `json:"nome"`
	Categoria catalog.Category `json:"categoria"`
	Preco     decimal.Decimal  `json:"preco"`
	Ativo     bool             `json:"ativo"`
}

type legacyItem struct {
	ProdutoID string           `json:"produtoId"`
	Qtd       int              `json:"qtd"`
	Nome      string           `json:"nome"`
	Preco     decimal.Decimal  `json:"preco"`
	Cat       catalog.Category `json:"cat"`
}

type legacyEntrega struct {
	Endereco   string `json:"endereco"`
	Numero     string `json:"numero"`
	Bairro     string `json:"bairro"`
	CEP        string `json:"cep"`
	Referencia string `json:"referencia"`
}

type legacyPedido struct {
	Numero             int             `json:"numero"`
	ClienteID          string          `json:"clienteId"`
	Itens              []legacyItem    `json:"itens"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	Descontos          decimal.Decimal `json:"descontos"`
	PromocoesAplicadas []string        `json:"promocoesAplicadas"`
	TaxaEntrega        decimal.Decimal `json:"taxaEntrega"`
	Total              decimal.Decimal `json:"total"`
	Forma              payment.Method  `json:"forma"`
	CriadoEm           time.Time       `json:"criadoEm"`
	Modo               string          `json:"modo"`
	Entrega            *legacyEntrega  `json:"entrega"`
}

// decode reads either layout. legacy reports whether the first-version layout was found.
func decode(data []byte) (doc document, legacy bool, err error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return document{}, false, err
	}
	if !isLegacy(keys) {
		err = json.Unmarshal(data, &doc)
		return doc, false, err
	}
	var old legacyDocument
	if err := json.Unmarshal(data, &old); err != nil {
		return document{}, true, err
	}
	return old.convert(), true, nil
}

func isLegacy(keys map[string]json.RawMessage) bool {
	for _, k := range []string{"customers", "products", "orders"} {
		if _, ok := keys[k]; ok {
			return false
		}
	}
	for _, k := range []string{"clientes", "produtos", "pedidos"} {
		if _, ok := keys[k]; ok {
			return true
		}
	}
	return false
}

func (d legacyDocument) convert() document {
	doc := document{
		Customers: make([]customer.Customer, 0, len(d.Clientes)),
		Products:  make([]catalog.Product, 0, len(d.Produtos)),
		Orders:    make([]order.Order, 0, len(d.Pedidos)),
	}
	for _, c := range d.Clientes {
		doc.Customers = append(doc.Customers, customer.Customer{
			ID:    c.ID,
			TaxID: customer.NormalizeTaxID(c.CPF),
			Name:  c.Nome,
			Phone: c.Telefone,
		})
	}
	for _, p := range d.Produtos {
		doc.Products = append(doc.Products, catalog.Product{
			ID:       p.ID,
			Name:     p.Nome,
			Category: p.Categoria,
			Price:    p.Preco,
			Active:   p.Ativo,
		})
	}
	for _, p := range d.Pedidos {
		doc.Orders = append(doc.Orders, p.convert())
	}
	return doc
}

func (p legacyPedido) convert() order.Order {
	o := order.Order{
		Number:            p.Numero,
		CustomerID:        p.ClienteID,
		Items:             make([]pricing.LineItem, 0, len(p.Itens)),
		Subtotal:          p.Subtotal,
		Discounts:         p.Descontos,
		AppliedPromotions: p.PromocoesAplicadas,
		DeliveryFee:       p.TaxaEntrega,
		Total:             p.Total,
		PaymentMethod:     p.Forma,
		CreatedAt:         p.CriadoEm,
		Mode:              shipping.ModePickup,
	}
	if o.AppliedPromotions == nil {
		o.AppliedPromotions = []string{}
	}
	for _, it := range p.Itens {
		o.Items = append(o.Items, pricing.LineItem{
			ProductID: it.ProdutoID,
			Qty:       it.Qtd,
			Name:      it.Nome,
			UnitPrice: it.Preco,
			Category:  it.Cat,
		})
	}
	if mode, err := shipping.ParseMode(p.Modo); err == nil {
		o.Mode = mode
	}
	if p.Entrega != nil {
		o.Delivery = &shipping.DeliveryInfo{
			Address:      p.Entrega.Endereco,
			Number:       p.Entrega.Numero,
			Neighborhood: p.Entrega.Bairro,
			PostalCode:   p.Entrega.CEP,
			Reference:    p.Entrega.Referencia,
		}
	}
	return o
}
