// Package all importa todos los adapters para auto-registro.
// Importar este paquete en main.go para habilitar todos los drivers.
//
// Uso:
//
//	import _ "github.com/dropDatabas3/modelgate/internal/store/adapters/all"
package all

import (
	_ "github.com/dropDatabas3/modelgate/internal/store/adapters/pg"
	_ "github.com/dropDatabas3/modelgate/internal/store/adapters/sqlite"
	_ "github.com/dropDatabas3/modelgate/internal/store/adapters/supabase"
)
