package catalog

import "github.com/sells-group/tradedoc-cli/internal/model"

// Shorthand doc-type sets for the default definitions.
var (
	allDocs = []model.DocType{model.DocInvoice, model.DocPackingList, model.DocBL}
	invOnly = []model.DocType{model.DocInvoice}
	plOnly  = []model.DocType{model.DocPackingList}
	blOnly  = []model.DocType{model.DocBL}
	invPL   = []model.DocType{model.DocInvoice, model.DocPackingList}
	invBL   = []model.DocType{model.DocInvoice, model.DocBL}
	plAndBL = []model.DocType{model.DocPackingList, model.DocBL}
)

// Common value patterns shared by several fields.
const (
	patIdentifier = `([A-Z0-9\-/]{4,})`
	patDate       = `([0-9]{1,4}[./\-][0-9]{1,2}[./\-][0-9]{1,4})`
	patAmount     = `([0-9][0-9.,]*)`
	patFreeText   = `([A-Za-z0-9&.,\-\s]{3,})`
	patCountry    = `([A-Za-z\s]{3,})`
	patWeight     = `([0-9][0-9.,]*\s*[A-Za-z]{0,3})`
)

// defaultDefinitions is the built-in field catalog: every recognized field,
// the document types it applies to, its value kind, and its label aliases in
// most-specific-first order. Aliases cover both English and Portuguese labels
// since counterparty paperwork arrives in either.
func defaultDefinitions() []model.FieldDefinition {
	return []model.FieldDefinition{
		{
			Name:        "document_number",
			Description: "the document's own reference number",
			DocTypes:    allDocs,
			Kind:        model.KindIdentifier,
			Aliases:     []string{"document number", "número do documento", "doc no"},
			Pattern:     `([A-Z0-9\-/]{3,})`,
		},
		{
			Name:        "invoice_number",
			Description: "the commercial invoice number",
			DocTypes:    invOnly,
			Kind:        model.KindIdentifier,
			Aliases:     []string{"commercial invoice number", "invoice number", "invoice no", "invoice n°", "invoice nr", "inv#"},
			Pattern:     patIdentifier,
		},
		{
			Name:        "packing_list_number",
			Description: "the packing list number",
			DocTypes:    plOnly,
			Kind:        model.KindIdentifier,
			Aliases:     []string{"packing list number", "packing list no", "packing list n°", "p/l number", "p/l no", "packing no"},
			Pattern:     patIdentifier,
		},
		{
			Name:        "bl_number",
			Description: "the bill of lading number",
			DocTypes:    blOnly,
			Kind:        model.KindIdentifier,
			Aliases:     []string{"bill of lading number", "bill of lading no", "b/l number", "b/l no", "bl no", "bol no"},
			Pattern:     patIdentifier,
		},
		{
			Name:        "issue_date",
			Description: "the date the document was issued",
			DocTypes:    invOnly,
			Kind:        model.KindDate,
			Aliases:     []string{"date of issue", "issue date", "data de emissão", "invoice date", "invoice issued on"},
			Pattern:     patDate,
		},
		{
			Name:        "shipment_date",
			Description: "the date the goods were shipped",
			DocTypes:    plAndBL,
			Kind:        model.KindDate,
			Aliases:     []string{"shipment date", "shipping date", "embarque"},
			Pattern:     patDate,
		},
		{
			Name:        "issue_or_shipment_date",
			Description: "the combined issue/shipment date some documents carry",
			DocTypes:    plAndBL,
			Kind:        model.KindDate,
			Aliases:     []string{"data de emissão / embarque", "issue/shipment date"},
			Pattern:     patDate,
		},
		{
			Name:        "po_number",
			Description: "the buyer's purchase order number",
			DocTypes:    invPL,
			Kind:        model.KindIdentifier,
			Aliases:     []string{"purchase order", "ordem de compra", "po no", "order no"},
			Pattern:     `([A-Z0-9\-/]{3,})`,
		},
		{
			Name:        "shipper",
			Description: "the exporting party (shipper/seller) name",
			DocTypes:    allDocs,
			Kind:        model.KindString,
			Aliases:     []string{"shipper", "exporter", "exportador", "seller"},
			Pattern:     patFreeText,
		},
		{
			Name:        "consignee",
			Description: "the importing party (consignee/buyer) name",
			DocTypes:    allDocs,
			Kind:        model.KindString,
			Aliases:     []string{"consignee", "importador", "importer", "buyer"},
			Pattern:     patFreeText,
		},
		{
			Name:        "consignee_cnpj",
			Description: "the consignee's Brazilian CNPJ tax id",
			DocTypes:    allDocs,
			Kind:        model.KindIdentifier,
			Aliases:     []string{"cnpj do importador", "cnpj consignee", "consignee tax id"},
			Pattern:     `([0-9./\-]{14,20})`,
			ContextScan: true,
		},
		{
			Name:        "goods_description",
			Description: "the description of the goods being shipped",
			DocTypes:    allDocs,
			Kind:        model.KindString,
			Aliases:     []string{"description of goods", "descrição da mercadoria", "commodity"},
			Pattern:     `([A-Za-z0-9,./\-\s]{5,})`,
		},
		{
			Name:        "freight_value",
			Description: "the freight charge amount",
			DocTypes:    invOnly,
			Kind:        model.KindMoney,
			Aliases:     []string{"freight value", "valor do frete", "freight amount"},
			Pattern:     patAmount,
		},
		{
			Name:        "freight_term",
			Description: "the freight payment term (prepaid/collect)",
			DocTypes:    invBL,
			Kind:        model.KindString,
			Aliases:     []string{"freight term", "condição do frete", "freight condition"},
			Pattern:     `([A-Za-z\s]{3,})`,
		},
		{
			Name:        "origin_country",
			Description: "the country of origin of the goods",
			DocTypes:    allDocs,
			Kind:        model.KindCountry,
			Aliases:     []string{"country of origin", "país de origem", "made in"},
			Pattern:     patCountry,
		},
		{
			Name:        "provenance_country",
			Description: "the country of provenance",
			DocTypes:    invOnly,
			Kind:        model.KindCountry,
			Aliases:     []string{"país de procedência", "country of provenance"},
			Pattern:     patCountry,
		},
		{
			Name:        "acquisition_country",
			Description: "the country of acquisition",
			DocTypes:    invOnly,
			Kind:        model.KindCountry,
			Aliases:     []string{"país de aquisição", "country of acquisition"},
			Pattern:     patCountry,
		},
		{
			Name:        "destination_country",
			Description: "the destination country of the shipment",
			DocTypes:    allDocs,
			Kind:        model.KindCountry,
			Aliases:     []string{"country of destination", "destination country", "destination"},
			Pattern:     patCountry,
		},
		{
			Name:        "pol",
			Description: "the port of loading",
			DocTypes:    blOnly,
			Kind:        model.KindString,
			Aliases:     []string{"port of loading", "porto de carregamento", "load port", "port load", "pol"},
			Pattern:     patCountry,
		},
		{
			Name:        "pod",
			Description: "the port of discharge",
			DocTypes:    blOnly,
			Kind:        model.KindString,
			Aliases:     []string{"port of discharge", "porto de descarga", "discharge port", "port discharge", "pod"},
			Pattern:     patCountry,
		},
		{
			Name:        "incoterm",
			Description: "the three-letter international trade term (FOB, CIF, ...)",
			DocTypes:    invOnly,
			Kind:        model.KindIdentifier,
			Aliases:     []string{"terms of delivery", "trade term", "incoterm"},
			Pattern:     `\b([A-Z]{3})\b`,
			Vocabulary:  incoterms(),
		},
		{
			Name:        "currency",
			Description: "the three-letter invoice currency code",
			DocTypes:    invOnly,
			Kind:        model.KindIdentifier,
			Aliases:     []string{"invoice currency", "currency", "curr"},
			Pattern:     `\b([A-Z]{3})\b`,
			Vocabulary:  currencies(),
		},
		{
			Name:        "net_weight",
			Description: "the net weight of the cargo",
			DocTypes:    allDocs,
			Kind:        model.KindWeight,
			Aliases:     []string{"net weight", "peso líquido", "n.w.", "nw"},
			Pattern:     patWeight,
		},
		{
			Name:        "gross_weight",
			Description: "the gross weight of the cargo",
			DocTypes:    allDocs,
			Kind:        model.KindWeight,
			Aliases:     []string{"gross weight", "peso bruto", "g.w.", "gw"},
			Pattern:     patWeight,
		},
		{
			Name:        "volume_cbm",
			Description: "the cargo volume in cubic meters",
			DocTypes:    allDocs,
			Kind:        model.KindWeight,
			Aliases:     []string{"cubagem", "cbm", "volume"},
			Pattern:     `([0-9][0-9.,]*\s*(?:CBM|M3)?)`,
		},
		{
			Name:        "package_count",
			Description: "the total number of packages",
			DocTypes:    allDocs,
			Kind:        model.KindCount,
			Aliases:     []string{"total packages", "quantidade de volumes", "number of packages", "qty packages", "packages", "cartons"},
			Pattern:     patAmount,
		},
		{
			Name:        "ncm",
			Description: "the NCM / HS tariff classification code",
			DocTypes:    invPL,
			Kind:        model.KindIdentifier,
			Aliases:     []string{"hs code", "hscode", "ncms", "ncm"},
			Pattern:     `([0-9]{4,8}(?:\.[0-9]{2})?)`,
			ContextScan: true,
		},
		{
			Name:        "total_value",
			Description: "the total invoice amount",
			DocTypes:    invOnly,
			Kind:        model.KindMoney,
			Aliases:     []string{"total amount", "total value", "invoice total", "amount due"},
			Pattern:     patAmount,
		},
		{
			Name:        "etd",
			Description: "the estimated time of departure",
			DocTypes:    blOnly,
			Kind:        model.KindDate,
			Aliases:     []string{"estimated time of departure", "departure date", "etd"},
			Pattern:     patDate,
		},
		{
			Name:        "eta",
			Description: "the estimated time of arrival",
			DocTypes:    blOnly,
			Kind:        model.KindDate,
			Aliases:     []string{"estimated time of arrival", "arrival date", "eta"},
			Pattern:     patDate,
		},
	}
}

// incoterms is the closed vocabulary of Incoterms 2010/2020 three-letter
// trade terms.
func incoterms() []string {
	return []string{
		"EXW", "FCA", "FAS", "FOB", "CFR", "CIF", "CPT", "CIP",
		"DAP", "DPU", "DDP", "DAT", "DDU",
	}
}

// currencies is the set of currency codes accepted for the currency field.
func currencies() []string {
	return []string{
		"USD", "EUR", "BRL", "GBP", "JPY", "CNY", "CHF", "CAD", "AUD",
		"ARS", "CLP", "COP", "MXN", "INR", "KRW", "SGD", "HKD", "SEK",
		"NOK", "DKK", "ZAR", "AED",
	}
}

// defaultComparative is the fixed ordered subset of fields shown side by side
// across the three document types.
func defaultComparative() []string {
	return []string{
		"invoice_number",
		"packing_list_number",
		"bl_number",
		"po_number",
		"shipper",
		"consignee",
		"origin_country",
		"destination_country",
		"incoterm",
		"currency",
		"package_count",
		"net_weight",
		"gross_weight",
		"total_value",
		"etd",
		"eta",
	}
}
