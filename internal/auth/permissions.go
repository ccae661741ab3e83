package auth

// Permission names of the workshop catalog. Each is resource:action; the seed
// catalog creates all of them.
const (
	PermServiceOrdersRead    = "service_orders:read"
	PermServiceOrdersCreate  = "service_orders:create"
	PermServiceOrdersUpdate  = "service_orders:update"
	PermServiceOrdersDelete  = "service_orders:delete"
	PermServiceOrdersApprove = "service_orders:approve"

	PermSalesOrdersRead    = "sales_orders:read"
	PermSalesOrdersCreate  = "sales_orders:create"
	PermSalesOrdersUpdate  = "sales_orders:update"
	PermSalesOrdersDelete  = "sales_orders:delete"
	PermSalesOrdersApprove = "sales_orders:approve"

	PermPOSRead   = "pos:read"
	PermPOSCreate = "pos:create"
	PermPOSRefund = "pos:refund"

	PermInventoryRead   = "inventory:read"
	PermInventoryCreate = "inventory:create"
	PermInventoryUpdate = "inventory:update"
	PermInventoryDelete = "inventory:delete"
	PermInventoryAdjust = "inventory:adjust"

	PermPayrollRead    = "payroll:read"
	PermPayrollCreate  = "payroll:create"
	PermPayrollUpdate  = "payroll:update"
	PermPayrollApprove = "payroll:approve"

	PermLoyaltyRead   = "loyalty:read"
	PermLoyaltyUpdate = "loyalty:update"
	PermLoyaltyRedeem = "loyalty:redeem"

	PermCustomersRead   = "customers:read"
	PermCustomersCreate = "customers:create"
	PermCustomersUpdate = "customers:update"
	PermCustomersDelete = "customers:delete"

	PermReportsRead   = "reports:read"
	PermReportsExport = "reports:export"

	// PermUsersRead allows listing users, their roles and effective matrices.
	PermUsersRead = "users:read"
	// PermUsersManage allows creating and deleting users and changing their roles and overrides.
	PermUsersManage = "users:manage"
	// PermRolesRead allows listing roles and the permission catalog.
	PermRolesRead = "roles:read"
	// PermRolesManage allows changing roles, their permission sets and the catalog.
	PermRolesManage = "roles:manage"
)
