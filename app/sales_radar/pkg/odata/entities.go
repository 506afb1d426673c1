package odata

// 实体名称
const (
	EntitySalesOrderHeaders = "SalesOrderHeadersV2"
	EntitySalesOrderLines   = "SalesOrderLines"
	EntityCustomers         = "CustomersV3"
)

// HeaderFields 每次查询销售订单头都会选取的字段
const HeaderFields = "SalesOrderNumber,OrderingCustomerAccountNumber,SalesOrderName," +
	"SalesOrderStatus,SalesOrderProcessingStatus,OrderCreationDateTime," +
	"RequestedShippingDate,ConfirmedShippingDate,CurrencyCode," +
	"PaymentTermsName,CustomerPaymentMethodName,DeliveryModeCode," +
	"DeliveryTermsCode,SalesOrderOriginCode,SalesOrderPoolId," +
	"DeliveryAddressName,DeliveryAddressCity,DeliveryAddressStateId," +
	"DeliveryAddressCountryRegionId"

// CustomerFields 信用与风险分析所需的客户字段
const CustomerFields = "CustomerAccount,OrganizationName,CustomerGroupId," +
	"CreditLimit,CreditLimitIsMandatory,PaymentTerms," +
	"SalesCurrencyCode,OnHoldStatus," +
	"CredManCreditLimitExpiryDate,CredManAccountStatusId," +
	"CredManGroupId,CredManEligibleCreditMax"

// LineFields 销售订单行字段
const LineFields = "SalesOrderNumber,SalesOrderLineStatus,ItemNumber,LineDescription," +
	"OrderedSalesQuantity,SalesPrice,LineAmount,CurrencyCode," +
	"RequestedReceiptDate,SalesProductCategoryName"

// LineHeaderExpand 展开订单头以获得客户和订单状态
const LineHeaderExpand = "SalesOrderHeader($select=OrderingCustomerAccountNumber,SalesOrderStatus)"

// OrderStatusBackorder SalesOrderStatus 枚举中的 Backorder，OData 不支持在 URL 中过滤该枚举
const OrderStatusBackorder = "Backorder"

// StatusInvoiced 行和订单头的已开票状态
const StatusInvoiced = "Invoiced"

// SalesOrder SalesOrderHeadersV2 实体
type SalesOrder struct {
	SalesOrderNumber               string `json:"SalesOrderNumber"`
	OrderingCustomerAccountNumber  string `json:"OrderingCustomerAccountNumber"`
	SalesOrderName                 string `json:"SalesOrderName"`
	SalesOrderStatus               string `json:"SalesOrderStatus"`
	SalesOrderProcessingStatus     string `json:"SalesOrderProcessingStatus"`
	OrderCreationDateTime          string `json:"OrderCreationDateTime"`
	RequestedShippingDate          string `json:"RequestedShippingDate"`
	ConfirmedShippingDate          string `json:"ConfirmedShippingDate"`
	CurrencyCode                   string `json:"CurrencyCode"`
	PaymentTermsName               string `json:"PaymentTermsName"`
	CustomerPaymentMethodName      string `json:"CustomerPaymentMethodName"`
	DeliveryModeCode               string `json:"DeliveryModeCode"`
	DeliveryTermsCode              string `json:"DeliveryTermsCode"`
	SalesOrderOriginCode           string `json:"SalesOrderOriginCode"`
	SalesOrderPoolID               string `json:"SalesOrderPoolId"`
	DeliveryAddressName            string `json:"DeliveryAddressName"`
	DeliveryAddressCity            string `json:"DeliveryAddressCity"`
	DeliveryAddressStateID         string `json:"DeliveryAddressStateId"`
	DeliveryAddressCountryRegionID string `json:"DeliveryAddressCountryRegionId"`
}

// CreatedDate 返回创建时间的日期部分
func (o SalesOrder) CreatedDate() string {
	if len(o.OrderCreationDateTime) >= 10 {
		return o.OrderCreationDateTime[:10]
	}
	return o.OrderCreationDateTime
}

// Customer CustomersV3 实体
type Customer struct {
	CustomerAccount              string   `json:"CustomerAccount"`
	OrganizationName             string   `json:"OrganizationName"`
	CustomerGroupID              string   `json:"CustomerGroupId"`
	CreditLimit                  *float64 `json:"CreditLimit"`
	CreditLimitIsMandatory       string   `json:"CreditLimitIsMandatory"`
	PaymentTerms                 string   `json:"PaymentTerms"`
	SalesCurrencyCode            string   `json:"SalesCurrencyCode"`
	OnHoldStatus                 string   `json:"OnHoldStatus"`
	CredManCreditLimitExpiryDate string   `json:"CredManCreditLimitExpiryDate"`
	CredManAccountStatusID       string   `json:"CredManAccountStatusId"`
	CredManGroupID               string   `json:"CredManGroupId"`
	CredManEligibleCreditMax     *float64 `json:"CredManEligibleCreditMax"`
}

// SalesOrderLine SalesOrderLines 实体（展开了订单头）
type SalesOrderLine struct {
	SalesOrderNumber         string      `json:"SalesOrderNumber"`
	SalesOrderLineStatus     string      `json:"SalesOrderLineStatus"`
	ItemNumber               string      `json:"ItemNumber"`
	LineDescription          string      `json:"LineDescription"`
	OrderedSalesQuantity     *float64    `json:"OrderedSalesQuantity"`
	SalesPrice               *float64    `json:"SalesPrice"`
	LineAmount               *float64    `json:"LineAmount"`
	CurrencyCode             string      `json:"CurrencyCode"`
	RequestedReceiptDate     string      `json:"RequestedReceiptDate"`
	SalesProductCategoryName string      `json:"SalesProductCategoryName"`
	SalesOrderHeader         *LineHeader `json:"SalesOrderHeader"`
}

// LineHeader 订单行展开的订单头字段
type LineHeader struct {
	OrderingCustomerAccountNumber string `json:"OrderingCustomerAccountNumber"`
	SalesOrderStatus              string `json:"SalesOrderStatus"`
}

// Float 将可能为空的数值转换为 0
func Float(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
