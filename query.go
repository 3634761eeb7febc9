package kelime

import (
	"github.com/RoaringBitmap/roaring"
)

// ═══════════════════════════════════════════════════════════════════════════════
// QUERY BUILDER: Boolean Queries over a Concordance
// ═══════════════════════════════════════════════════════════════════════════════
// Query: documents mentioning "kitap" AND "okul" in any inflection
//
//	results := NewQueryBuilder(c).
//	    Term("kitaplar").
//	    And().
//	    Term("okulda").
//	    Execute()
//
// Query: documents with ("kedi" OR "köpek") that mention no date
//
//	results := NewQueryBuilder(c).
//	    Group(func(q *QueryBuilder) {
//	        q.Term("kedi").Or().Term("köpek")
//	    }).
//	    And().Not().Category(Date).
//	    Execute()
//
// Operators are applied left to right without precedence; use Group to nest.
// Not negates against every indexed document.
// ═══════════════════════════════════════════════════════════════════════════════

// QueryBuilder provides a fluent interface for building boolean queries.
type QueryBuilder struct {
	concordance *Concordance
	stack       []*roaring.Bitmap // operands, in order
	ops         []QueryOp         // ops[i] joins stack[i] and stack[i+1]
	negate      bool              // negate the next operand
}

// QueryOp is a pending boolean operation.
type QueryOp int

const (
	OpNone QueryOp = iota
	OpAnd
	OpOr
)

// NewQueryBuilder creates a query over c.
func NewQueryBuilder(c *Concordance) *QueryBuilder {
	return &QueryBuilder{concordance: c}
}

// Term adds the documents containing term, analyzed as in Concordance.Lookup.
func (qb *QueryBuilder) Term(term string) *QueryBuilder {
	qb.push(qb.concordance.Lookup(term))
	return qb
}

// Category adds the documents containing a token of cat.
func (qb *QueryBuilder) Category(cat Category) *QueryBuilder {
	qb.push(qb.concordance.Category(cat))
	return qb
}

// And joins the previous and next operands by intersection.
func (qb *QueryBuilder) And() *QueryBuilder {
	qb.ops = append(qb.ops, OpAnd)
	return qb
}

// Or joins the previous and next operands by union.
func (qb *QueryBuilder) Or() *QueryBuilder {
	qb.ops = append(qb.ops, OpOr)
	return qb
}

// Not negates the next operand.
func (qb *QueryBuilder) Not() *QueryBuilder {
	qb.negate = true
	return qb
}

// Group evaluates fn as a sub-query and adds its result as one operand.
//
//	qb.Group(func(q *QueryBuilder) {
//	    q.Term("kedi").Or().Term("köpek")
//	}).And().Term("bahçe")
//	// (kedi OR köpek) AND bahçe
func (qb *QueryBuilder) Group(fn func(*QueryBuilder)) *QueryBuilder {
	sub := NewQueryBuilder(qb.concordance)
	fn(sub)
	qb.push(sub.Execute())
	return qb
}

// Execute evaluates the query and returns the matching document IDs.
func (qb *QueryBuilder) Execute() *roaring.Bitmap {
	if len(qb.stack) == 0 {
		return roaring.NewBitmap()
	}

	result := qb.stack[0].Clone()
	for i := 1; i < len(qb.stack); i++ {
		if i-1 >= len(qb.ops) {
			break
		}
		switch qb.ops[i-1] {
		case OpAnd:
			result.And(qb.stack[i])
		case OpOr:
			result.Or(qb.stack[i])
		}
	}
	return result
}

// push adds an operand, applying a pending Not.
func (qb *QueryBuilder) push(bitmap *roaring.Bitmap) {
	if qb.negate {
		bitmap = roaring.AndNot(qb.concordance.Docs(), bitmap)
		qb.negate = false
	}
	qb.stack = append(qb.stack, bitmap)
}

// ═══════════════════════════════════════════════════════════════════════════════
// CONVENIENCE METHODS FOR COMMON PATTERNS
// ═══════════════════════════════════════════════════════════════════════════════

// AllOf finds documents containing every term.
func AllOf(c *Concordance, terms ...string) *roaring.Bitmap {
	if len(terms) == 0 {
		return roaring.NewBitmap()
	}
	qb := NewQueryBuilder(c).Term(terms[0])
	for _, term := range terms[1:] {
		qb.And().Term(term)
	}
	return qb.Execute()
}

// AnyOf finds documents containing at least one term.
func AnyOf(c *Concordance, terms ...string) *roaring.Bitmap {
	if len(terms) == 0 {
		return roaring.NewBitmap()
	}
	qb := NewQueryBuilder(c).Term(terms[0])
	for _, term := range terms[1:] {
		qb.Or().Term(term)
	}
	return qb.Execute()
}

// TermExcluding finds documents containing include but not exclude.
func TermExcluding(c *Concordance, include, exclude string) *roaring.Bitmap {
	return NewQueryBuilder(c).
		Term(include).
		And().Not().Term(exclude).
		Execute()
}
