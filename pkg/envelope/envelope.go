package envelope

// Section names one of the three parts of a request envelope.
type Section string

const (
	SectionBody   Section = "body"
	SectionQuery  Section = "query"
	SectionParams Section = "params"
)

// Sections lists every section in scan order.
var Sections = []Section{SectionBody, SectionQuery, SectionParams}

// Envelope carries the body, query and path parameters of one request.
type Envelope struct {
	Body   Value
	Query  Value
	Params Value
}

// New builds an envelope. Null sections become empty objects.
func New(body, query, params Value) Envelope {
	return Envelope{
		Body:   orEmpty(body),
		Query:  orEmpty(query),
		Params: orEmpty(params),
	}
}

func orEmpty(v Value) Value {
	if v.IsNull() {
		return EmptyObject()
	}
	return v
}

func (e Envelope) Section(s Section) Value {
	switch s {
	case SectionQuery:
		return e.Query
	case SectionParams:
		return e.Params
	default:
		return e.Body
	}
}

// With returns a copy of e where section s holds v.
func (e Envelope) With(s Section, v Value) Envelope {
	switch s {
	case SectionQuery:
		e.Query = v
	case SectionParams:
		e.Params = v
	default:
		e.Body = v
	}
	return e
}

func (e Envelope) Equal(o Envelope) bool {
	return e.Body.Equal(o.Body) && e.Query.Equal(o.Query) && e.Params.Equal(o.Params)
}
