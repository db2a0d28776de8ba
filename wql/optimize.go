package wql

// Optimize returns a semantically equivalent, simplified query:
//
//	Not(Not(x))        -> x
//	And(x), Or(x)      -> x
//	In(name, v)        -> Eq(name, v)
//	In(name)           -> False
//	And(.., False, ..) -> False, Or(.., True, ..) -> True
//	nested And/Or of the same operator are flattened
//
// After optimization True and False can only be the root of the tree.
func Optimize(q Query) Query {
	switch q.Op {
	case OpNot:
		sub := Optimize(q.Sub[0])
		switch {
		case sub.Op == OpNot:
			return sub.Sub[0]
		case sub.IsTrue():
			return False()
		case sub.IsFalse():
			return True()
		}
		return Not(sub)

	case OpAnd, OpOr:
		subs := make([]Query, 0, len(q.Sub))
		for _, s := range q.Sub {
			s = Optimize(s)
			switch {
			case q.Op == OpAnd && s.IsFalse(), q.Op == OpOr && s.IsTrue():
				return s
			case s.IsTrue(), s.IsFalse():
				// neutral element of q.Op
				continue
			case s.Op == q.Op:
				subs = append(subs, s.Sub...)
			default:
				subs = append(subs, s)
			}
		}
		switch len(subs) {
		case 0:
			return Query{Op: q.Op}
		case 1:
			return subs[0]
		}
		return Query{Op: q.Op, Sub: subs}

	case OpIn:
		switch len(q.Values) {
		case 0:
			return False()
		case 1:
			return Eq(q.Name, q.Values[0])
		}
		return q
	}
	return q
}
