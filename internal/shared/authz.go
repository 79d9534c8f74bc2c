package shared

// Permission names gating laboratory pages and actions. The Spanish names
// are the canonical values stored in the permission catalog and referenced
// by client snapshots, so they must not be renamed casually.
const (
	PermVerMuestras        = "VerMuestras"
	PermVerDetallesMuestra = "VerDetallesMuestra"
	PermRegistrarMuestra   = "RegistrarMuestra"
	PermEditarMuestra      = "EditarMuestra"
	PermEliminarMuestra    = "EliminarMuestra"
	PermExportarMuestraPDF = "ExportarMuestraPDF"

	PermVerAnalisis      = "VerAnalisis"
	PermAgregarAnalisis  = "AgregarAnalisis"
	PermEditarAnalisis   = "EditarAnalisis"
	PermEliminarAnalisis = "EliminarAnalisis"

	PermVerEstados      = "VerEstados"
	PermRegistrarEstado = "RegistrarEstado"
	PermEditarEstados   = "EditarEstados"
	PermEliminarEstados = "EliminarEstados"

	PermVerClientes      = "VerClientes"
	PermRegistrarCliente = "RegistrarCliente"
	PermEditarCliente    = "EditarCliente"
	PermEliminarCliente  = "EliminarCliente"

	PermVerNotas          = "VerNotas"
	PermVerNotasMuestras  = "VerNotasMuestras"
	PermAgregarNotas      = "AgregarNotas"
	PermEliminarNotas     = "EliminarNotas"

	PermVerUsuarios       = "VerUsuarios"
	PermAsignarRol        = "AsignarRol"
	PermVerRolesYPermisos = "VerRolesYPermisos"
)

// LabScopes lists every permission the application ships with; the seed
// script loads these into the permission catalog.
func LabScopes() []string {
	return []string{
		PermVerMuestras,
		PermVerDetallesMuestra,
		PermRegistrarMuestra,
		PermEditarMuestra,
		PermEliminarMuestra,
		PermExportarMuestraPDF,
		PermVerAnalisis,
		PermAgregarAnalisis,
		PermEditarAnalisis,
		PermEliminarAnalisis,
		PermVerEstados,
		PermRegistrarEstado,
		PermEditarEstados,
		PermEliminarEstados,
		PermVerClientes,
		PermRegistrarCliente,
		PermEditarCliente,
		PermEliminarCliente,
		PermVerNotas,
		PermVerNotasMuestras,
		PermAgregarNotas,
		PermEliminarNotas,
		PermVerUsuarios,
		PermAsignarRol,
		PermVerRolesYPermisos,
	}
}
