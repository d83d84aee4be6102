package views

// FieldGeneral marks a form error not tied to one input.
const FieldGeneral = "general"

// FormError is an error attached to one form input or to the whole form.
type FormError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// On reports whether the error belongs to field.
func (e *FormError) On(field string) bool {
	return e != nil && e.Field == field
}

// LoginForm is the administrator sign-in form.
type LoginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

// ForgotPasswordForm requests a reset link.
type ForgotPasswordForm struct {
	Email string `form:"email" validate:"required,email"`
}

// ResetPasswordForm sets a new password with a mailed token.
type ResetPasswordForm struct {
	Token           string `form:"token" validate:"required"`
	Password        string `form:"password" validate:"required,min=6"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=Password"`
}

// ProductForm is the create-product form. Images arrive as multipart files
// and are not part of the bound struct.
type ProductForm struct {
	Name        string   `form:"name" validate:"required,max=200"`
	Description string   `form:"description" validate:"max=5000"`
	Price       string   `form:"price" validate:"required,numeric"`
	Stock       string   `form:"stock" validate:"omitempty,numeric"`
	Category    []string `form:"category"`
}

// OrderStatuses are the states an administrator may move an order to.
var OrderStatuses = []string{"pending", "processing", "shipped", "delivered", "cancelled"}

// OrderStatusForm changes one order's status.
type OrderStatusForm struct {
	Status string `form:"status" validate:"required,oneof=pending processing shipped delivered cancelled"`
}
