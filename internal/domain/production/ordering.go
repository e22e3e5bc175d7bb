package production

import "sort"

// Less is the queue order: higher priority first, then earlier submission.
// Submission sequences are unique, so this is a strict total order.
func Less(a, b *Order) bool {
	if a.priority != b.priority {
		return a.priority > b.priority
	}
	return a.submittedAt < b.submittedAt
}

// SortOrders sorts orders in place by Less
func SortOrders(orders []*Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		return Less(orders[i], orders[j])
	})
}
