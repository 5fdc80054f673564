package dto

// ConnectAccountRequest 连接账户请求
type ConnectAccountRequest struct {
	Name           string  `json:"name" binding:"required,max=100"`
	Institution    string  `json:"institution" binding:"max=100"`
	AccountType    string  `json:"account_type" binding:"required,oneof=checking savings credit investment"`
	CurrentBalance float64 `json:"current_balance"`
}

// ExportRequest 交易导出请求
type ExportRequest struct {
	Format string `json:"format" binding:"omitempty,oneof=csv"`
}

// ExportResponse 导出受理回执
type ExportResponse struct {
	ExportID string `json:"export_id"`
	Status   string `json:"status"`
}
