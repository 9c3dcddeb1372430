package database

import (
	_ "embed"
	"fmt"

	"github.com/yeremiapane/pastelaria-api/models"
	"github.com/yeremiapane/pastelaria-api/utils"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed seed.yaml
var seedYAML []byte

type seedTamanho struct {
	Nome          string  `yaml:"nome"`
	Multiplicador float64 `yaml:"multiplicador"`
	Descricao     string  `yaml:"descricao"`
	Ordem         int     `yaml:"ordem"`
}

type seedSabor struct {
	Nome           string  `yaml:"nome"`
	PrecoAdicional float64 `yaml:"preco_adicional"`
	Categoria      string  `yaml:"categoria"`
	Descricao      string  `yaml:"descricao"`
}

type seedProduto struct {
	Nome      string  `yaml:"nome"`
	Categoria string  `yaml:"categoria"`
	Preco     float64 `yaml:"preco"`
	Descricao string  `yaml:"descricao"`
}

type SeedData struct {
	Tamanhos []seedTamanho `yaml:"tamanhos"`
	Sabores  []seedSabor   `yaml:"sabores"`
	Produtos []seedProduto `yaml:"produtos"`
}

type SeedResult struct {
	Tamanhos int
	Sabores  int
	Produtos int
}

func LoadSeedData() (*SeedData, error) {
	var data SeedData
	if err := yaml.Unmarshal(seedYAML, &data); err != nil {
		return nil, fmt.Errorf("parse seed data: %w", err)
	}
	return &data, nil
}

// Seed inserts the sample catalog. Without reset, a table that already has
// rows is left alone. Orders are never touched.
func Seed(db *gorm.DB, reset bool) (SeedResult, error) {
	var result SeedResult

	data, err := LoadSeedData()
	if err != nil {
		return result, err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if reset {
			for _, table := range []interface{}{&models.Produto{}, &models.Sabor{}, &models.Tamanho{}} {
				if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(table).Error; err != nil {
					return err
				}
			}
		}

		if empty, err := isEmpty(tx, &models.Tamanho{}); err != nil {
			return err
		} else if empty {
			rows := make([]models.Tamanho, 0, len(data.Tamanhos))
			for _, t := range data.Tamanhos {
				rows = append(rows, models.Tamanho{Nome: t.Nome, Multiplicador: t.Multiplicador, Descricao: t.Descricao, Ordem: t.Ordem, Ativo: true})
			}
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
			result.Tamanhos = len(rows)
		}

		if empty, err := isEmpty(tx, &models.Sabor{}); err != nil {
			return err
		} else if empty {
			rows := make([]models.Sabor, 0, len(data.Sabores))
			for _, s := range data.Sabores {
				rows = append(rows, models.Sabor{Nome: s.Nome, PrecoAdicional: s.PrecoAdicional, Categoria: s.Categoria, Descricao: s.Descricao, Ativo: true})
			}
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
			result.Sabores = len(rows)
		}

		if empty, err := isEmpty(tx, &models.Produto{}); err != nil {
			return err
		} else if empty {
			rows := make([]models.Produto, 0, len(data.Produtos))
			for _, p := range data.Produtos {
				rows = append(rows, models.Produto{Nome: p.Nome, Categoria: p.Categoria, Preco: p.Preco, Descricao: p.Descricao, Ativo: true})
			}
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
			result.Produtos = len(rows)
		}
		return nil
	})
	if err != nil {
		return SeedResult{}, fmt.Errorf("seed: %w", err)
	}

	utils.InfoLogger.Printf("seed: %d produtos, %d sabores, %d tamanhos", result.Produtos, result.Sabores, result.Tamanhos)
	return result, nil
}

func isEmpty(tx *gorm.DB, model interface{}) (bool, error) {
	var count int64
	if err := tx.Model(model).Count(&count).Error; err != nil {
		return false, err
	}
	return count == 0, nil
}
