package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCasing(t *testing.T) {
	tests := []struct {
		in                   string
		pascal, camel, upper string
	}{
		{"order_id", "OrderId", "orderId", "ORDER_ID"},
		{"orderID", "OrderID", "orderID", "ORDER_ID"},
		{"HTTPServer", "HTTPServer", "httpServer", "HTTP_SERVER"},
		{"max-items", "MaxItems", "maxItems", "MAX_ITEMS"},
		{"v2Name", "V2Name", "v2Name", "V2_NAME"},
		{"x", "X", "x", "X"},
		{"", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.pascal, Pascal(tt.in))
			assert.Equal(t, tt.camel, Camel(tt.in))
			assert.Equal(t, tt.upper, Upper(tt.in))
		})
	}
}

func TestWords(t *testing.T) {
	assert.Equal(t, []string{"Order", "Id"}, Words("Order-Id"))
	assert.Empty(t, Words("__"))
}
