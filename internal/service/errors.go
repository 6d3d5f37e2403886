package service

import "github.com/menuvercel/mitienda-host/internal/apierror"

// Domain errors returned by the services. Handlers map them to HTTP status
// codes through apierror.KindOf.
var (
	ErrProductoNoEncontrado   = apierror.NotFound("Producto no encontrado")
	ErrVendedorNoEncontrado   = apierror.NotFound("Vendedor no encontrado")
	ErrUsuarioNoEncontrado    = apierror.NotFound("Usuario no encontrado")
	ErrAsignacionNoEncontrada = apierror.NotFound("El vendedor no tiene este producto asignado")
	ErrProductoNoAsignado     = apierror.NotFound("Producto no encontrado o no asignado al vendedor")

	ErrStockInsuficiente    = apierror.InsufficientStock("Stock insuficiente")
	ErrCantidadBajaExcedida = apierror.InsufficientStock("La cantidad a reducir es mayor que la cantidad disponible")

	ErrCantidadInvalida = apierror.Invalid("La cantidad debe ser mayor que cero")
	ErrFechaInvalida    = apierror.Invalid("Fecha invalida")
	ErrIDInvalido       = apierror.Invalid("ID invalido")

	ErrCredencialesInvalidas = apierror.Unauthorized("Credenciales invalidas")
	ErrNoAutorizado          = apierror.Unauthorized("No autorizado")
	ErrNombreDuplicado       = apierror.Conflict("El nombre de usuario ya existe")

	ErrSubidaFoto = apierror.Upstream("Error al subir la imagen")
)
