package repository

import "github.com/dmorales/farmapos-api/internal/domain/entity"

// Directorios externos al motor: el engine solo verifica existencia.
// El CRUD completo de clientes/usuarios/proveedores vive fuera del núcleo.

// ClientRepository puerto del directorio de clientes.
type ClientRepository interface {
	Create(client *entity.Client) error
	GetByID(id string) (*entity.Client, error)
}

// UserRepository puerto del directorio de usuarios.
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id string) (*entity.User, error)
	FindByEmail(email string) (*entity.User, error)
}

// SupplierRepository puerto del directorio de proveedores.
type SupplierRepository interface {
	Create(supplier *entity.Supplier) error
	GetByID(id string) (*entity.Supplier, error)
}
