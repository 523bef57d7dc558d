package hacienda

import "github.com/avillegas/facturacr/bill"

// Identificacion is a party identification block.
type Identificacion struct {
	Tipo   string `xml:"Tipo"`
	Numero string `xml:"Numero"`
}

// Ubicacion is the structured address block.
type Ubicacion struct {
	Provincia  string `xml:"Provincia"`
	Canton     string `xml:"Canton"`
	Distrito   string `xml:"Distrito"`
	Barrio     string `xml:"Barrio,omitempty"`
	OtrasSenas string `xml:"OtrasSenas,omitempty"`
}

// Telefono is a phone number block.
type Telefono struct {
	CodigoPais  string `xml:"CodigoPais"`
	NumTelefono string `xml:"NumTelefono"`
}

// Emisor is the document issuer block.
type Emisor struct {
	Nombre            string          `xml:"Nombre"`
	Identificacion    *Identificacion `xml:"Identificacion"`
	NombreComercial   string          `xml:"NombreComercial,omitempty"`
	Ubicacion         *Ubicacion      `xml:"Ubicacion,omitempty"`
	Telefono          *Telefono       `xml:"Telefono,omitempty"`
	CorreoElectronico string          `xml:"CorreoElectronico,omitempty"`
}

// Receptor is the document receiver block. ActividadEconomica only
// appears on the factura variant.
type Receptor struct {
	Nombre             string          `xml:"Nombre"`
	Identificacion     *Identificacion `xml:"Identificacion,omitempty"`
	ActividadEconomica string          `xml:"ActividadEconomica,omitempty"`
	NombreComercial    string          `xml:"NombreComercial,omitempty"`
	Ubicacion          *Ubicacion      `xml:"Ubicacion,omitempty"`
	Telefono           *Telefono       `xml:"Telefono,omitempty"`
	CorreoElectronico  string          `xml:"CorreoElectronico,omitempty"`
}

func newEmisor(p *bill.Party) *Emisor {
	e := &Emisor{
		Nombre:            p.Name,
		NombreComercial:   p.CommercialName,
		Ubicacion:         newUbicacion(p.Location),
		Telefono:          newTelefono(p.Phone),
		CorreoElectronico: p.Email,
	}
	if p.Identification != nil {
		e.Identificacion = &Identificacion{
			Tipo:   p.Identification.Type,
			Numero: p.Identification.Number,
		}
	}
	return e
}

func newReceptor(p *bill.Party, withActivity bool) *Receptor {
	r := &Receptor{
		Nombre:            p.Name,
		NombreComercial:   p.CommercialName,
		Ubicacion:         newUbicacion(p.Location),
		Telefono:          newTelefono(p.Phone),
		CorreoElectronico: p.Email,
	}
	if p.Identification != nil {
		r.Identificacion = &Identificacion{
			Tipo:   p.Identification.Type,
			Numero: p.Identification.Number,
		}
	}
	if withActivity {
		r.ActividadEconomica = p.ActivityCode
	}
	return r
}

func newUbicacion(l *bill.Location) *Ubicacion {
	if l == nil {
		return nil
	}
	return &Ubicacion{
		Provincia:  l.Province,
		Canton:     l.Canton,
		Distrito:   l.District,
		Barrio:     l.Neighborhood,
		OtrasSenas: l.Address,
	}
}

func newTelefono(p *bill.Phone) *Telefono {
	if p == nil || p.Number == "" {
		return nil
	}
	cc := p.CountryCode
	if cc == "" {
		cc = "506"
	}
	return &Telefono{CodigoPais: cc, NumTelefono: p.Number}
}
