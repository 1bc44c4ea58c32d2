// Copyright 2025 Raywall Malheiros de Souza
// Licensed under the Mozilla Public License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.mozilla.org/en-US/MPL/2.0/
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// Package envloader carrega variáveis de ambiente para campos de uma struct
// usando as tags `env` e `envDefault`.
//
// Tipos suportados: string, int*, uint*, bool, float*, time.Duration e
// []string (valores separados por vírgula). Structs aninhadas e ponteiros
// para struct são percorridos recursivamente.
//
// O loader funciona como camada de sobreposição: uma variável definida sempre
// vence, enquanto o default só é aplicado a campos ainda zerados. Isso permite
// carregar primeiro um arquivo YAML e depois aplicar o ambiente por cima.
//
//	type SemaphoreConf struct {
//		BaseURL     string        `env:"SEMAPHORE_BASE_URL"`
//		ReadTimeout time.Duration `env:"SEMAPHORE_READ_TIMEOUT" envDefault:"30s"`
//	}
//
//	var cfg SemaphoreConf
//	if err := envloader.Load(&cfg); err != nil {
//		log.Fatal(err)
//	}
package envloader
