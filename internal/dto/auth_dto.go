package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type LoginRequest struct {
	Nombre   string `json:"nombre"   validate:"required,min=1"`
	Password string `json:"password" validate:"required,min=4"`
}

type RegistrarUsuarioRequest struct {
	Nombre   string  `json:"nombre"   validate:"required,min=2,max=100"`
	Password string  `json:"password" validate:"required,min=6"`
	Telefono *string `json:"telefono" validate:"omitempty,max=30"`
	Rol      string  `json:"rol"      validate:"required,oneof=Almacen Vendedor"`
}

type ActualizarVendedorRequest struct {
	Nombre   string  `json:"nombre"   validate:"required,min=2,max=100"`
	Telefono *string `json:"telefono" validate:"omitempty,max=30"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type UsuarioResponse struct {
	ID       string  `json:"id"`
	Nombre   string  `json:"nombre"`
	Telefono *string `json:"telefono"`
	Rol      string  `json:"rol"`
}

type LoginResponse struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
	Rol    string `json:"rol"`
	Token  string `json:"token"`
	// ExpiresIn is the token lifetime in seconds; it also bounds the cookie max-age.
	ExpiresIn int `json:"expires_in"`
}
