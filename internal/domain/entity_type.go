package domain

// EntityType identifies the destination collection an imported record
// belongs to. The set is fixed at configuration time: every type maps to
// exactly one backend endpoint and one ordered list of expected fields.
type EntityType string

const (
	EntityTipoAfastamento   EntityType = "tipos-afastamento"
	EntityColaborador       EntityType = "colaboradores"
	EntityTecnologia        EntityType = "tecnologias"
	EntityProcessoNegocio   EntityType = "processos-negocio"
	EntityAplicacao         EntityType = "aplicacoes"
	EntityCapacidadeNegocio EntityType = "capacidades-negocio"
	EntitySLA               EntityType = "slas"
	EntityRunbook           EntityType = "runbooks"
	EntityEstruturaProjeto  EntityType = "estruturas-projeto"
)

// EntityConfig describes one importable collection.
type EntityConfig struct {
	Type     EntityType `json:"type"`
	Label    string     `json:"label"`
	Endpoint string     `json:"endpoint"`
	// Keywords are matched case-insensitively against uploaded file names.
	// A file matches when its name contains every keyword of the rule.
	Keywords []string `json:"keywords"`
	// Fields is the expected header, in order.
	Fields []string `json:"fields"`
	// SampleRows seed the downloadable CSV template.
	SampleRows []string `json:"-"`
}

// entityRegistry is ordered: classification applies the rules front to
// back and the first match wins.
var entityRegistry = []EntityConfig{
	{
		Type:     EntityTipoAfastamento,
		Label:    "Tipos de Afastamento",
		Endpoint: "/api/tipos-afastamento",
		Keywords: []string{"tipo", "afastamento"},
		Fields:   []string{"sigla", "descricao", "argumentacaoLegal", "numeroDias", "tipoTempo"},
		SampleRows: []string{
			"FERIAS,Férias anuais remuneradas,Art. 129 da CLT - Todo empregado terá direito anualmente ao gozo de um período de férias,30,Dias",
			"LIC-MED,Licença médica,Art. 60 da Lei 8.213/91 - Auxílio-doença será devido ao segurado empregado,15,Dias",
			"LIC-MAT,Licença maternidade,Art. 392 da CLT - A empregada gestante tem direito à licença-maternidade,4,Meses",
		},
	},
	{
		Type:     EntityColaborador,
		Label:    "Colaboradores",
		Endpoint: "/api/colaboradores",
		Keywords: []string{"colaborador"},
		Fields:   []string{"matricula", "nome", "setor", "dataAdmissao"},
		SampleRows: []string{
			"001234,João Silva Santos,Tecnologia da Informação,2023-01-15",
			"001235,Maria Santos Oliveira,Recursos Humanos,2022-06-10",
			"001236,Pedro Costa Ferreira,Comercial,2021-03-20",
		},
	},
	{
		Type:     EntityTecnologia,
		Label:    "Tecnologias",
		Endpoint: "/api/tecnologias",
		Keywords: []string{"tecnologia"},
		Fields: []string{
			"sigla", "nome", "versaoRelease", "categoria", "status",
			"fornecedorFabricante", "tipoLicenciamento", "maturidadeInterna", "nivelSuporteInterno",
		},
		SampleRows: []string{
			"ORACLE-DB,Oracle Database,19c,Banco de Dados,Ativa,Oracle Corporation,Proprietária,Padronizada,Suporte Avançado",
			"MYSQL,MySQL Database,8.0,Banco de Dados,Ativa,Oracle Corporation,Open Source,Padronizada,Suporte Básico",
			"POSTGRES,PostgreSQL,15.0,Banco de Dados,Ativa,PostgreSQL Global Development Group,Open Source,Adotada,Suporte Intermediário",
		},
	},
	{
		Type:     EntityProcessoNegocio,
		Label:    "Processos de Negócio",
		Endpoint: "/api/processos-negocio",
		Keywords: []string{"processo"},
		Fields: []string{
			"sigla", "areaResponsavel", "descricao", "nivelMaturidade",
			"frequencia", "complexidade", "duracaoMediaHoras",
		},
		SampleRows: []string{
			"PN-001,Comercial,Processo de vendas e relacionamento com clientes,Inicial,Ad-Hoc,Baixa,1",
			"PN-002,Recursos Humanos,Processo de recrutamento e seleção de talentos,Gerenciado,Mensal,Média,4",
			"PN-003,TI,Processo de atendimento e suporte ao usuário,Definido,Diária,Alta,2",
		},
	},
	{
		Type:     EntityAplicacao,
		Label:    "Aplicações",
		Endpoint: "/api/aplicacoes",
		Keywords: []string{"aplicac"},
		Fields: []string{
			"sigla", "descricao", "urlDocumentacao", "tipoAplicacao",
			"cloudProvider", "faseCicloVida", "criticidadeNegocio",
		},
		SampleRows: []string{
			"CRM-WEB,Sistema de gestão de relacionamento com clientes,https://docs.empresa.com/crm,INTERNO,ON-PREMISE,Produção,Média",
			"PORTAL-RH,Portal de recursos humanos e autoatendimento,-,INTERNO,AWS,Produção,Alta",
			"APP-VENDAS,Aplicativo mobile para força de vendas,https://docs.empresa.com/vendas,EXTERNO,AZURE,Desenvolvimento,Baixa",
		},
	},
	{
		Type:     EntityCapacidadeNegocio,
		Label:    "Capacidades de Negócio",
		Endpoint: "/api/capacidades-negocio",
		Keywords: []string{"capacidade"},
		Fields:   []string{"nome", "descricao", "nivel", "tipo"},
		SampleRows: []string{
			"Gestão Comercial,Capacidade de gerir operações comerciais,1,Primária",
			"Gestão Financeira,Capacidade de gerir finanças,1,Primária",
			"Gestão de Pessoas,Capacidade de gerir recursos humanos,2,Suporte",
		},
	},
	{
		Type:     EntitySLA,
		Label:    "SLAs",
		Endpoint: "/api/slas",
		Keywords: []string{"sla"},
		Fields:   []string{"nome", "descricao", "metrica", "meta"},
		SampleRows: []string{
			"Disponibilidade Sistema,SLA de disponibilidade,Uptime,99.9%",
			"Tempo Resposta,SLA de performance,Response Time,< 2s",
			"Resolução Incidentes,SLA de suporte,MTTR,< 4h",
		},
	},
	{
		Type:     EntityRunbook,
		Label:    "Runbooks",
		Endpoint: "/api/runbooks",
		Keywords: []string{"runbook"},
		Fields:   []string{"sigla", "descricaoResumida", "finalidade", "tipoRunbook"},
		SampleRows: []string{
			"RB-001,Deploy de aplicação,Procedimento para deploy em produção,Operacional",
			"RB-002,Backup de banco,Procedimento para backup diário,Manutenção",
			"RB-003,Rollback de versão,Procedimento para reverter deploy,Emergencial",
		},
	},
	{
		Type:     EntityEstruturaProjeto,
		Label:    "Estruturas de Projeto",
		Endpoint: "/api/estruturas-projeto",
		Keywords: []string{"estrutura"},
		Fields: []string{
			"produto", "workItemProcess", "projeto", "dataInicial",
			"iteracao", "nomeTime", "numeroSemanas",
		},
		SampleRows: []string{
			"Azure DevOps,Scrum,Portal Colaboradores,2025-01-15,1,Time Portal,2",
			"Azure DevOps,Agile,Sistema Financeiro V2,2025-02-01,1,Time Financeiro,3",
			"Azure DevOps,Basic,Mobile App Cliente,2025-03-01,1,Time Mobile,2",
		},
	},
}

// Entities returns the ordered registry of importable collections.
func Entities() []EntityConfig {
	out := make([]EntityConfig, len(entityRegistry))
	copy(out, entityRegistry)
	return out
}

// LookupEntity resolves a type tag back to its configuration.
func LookupEntity(t EntityType) (EntityConfig, bool) {
	for _, cfg := range entityRegistry {
		if cfg.Type == t {
			return cfg, true
		}
	}
	return EntityConfig{}, false
}
