package catalog

// SkillCategory groups skills for reporting.
type SkillCategory string

const (
	CategorySQL                SkillCategory = "sql"
	CategoryPython             SkillCategory = "python"
	CategoryETL                SkillCategory = "etl_pipelines"
	CategorySpark              SkillCategory = "spark"
	CategoryStreaming          SkillCategory = "streaming"
	CategoryCloud              SkillCategory = "cloud"
	CategoryOrchestration      SkillCategory = "orchestration"
	CategoryDataModeling       SkillCategory = "data_modeling"
	CategoryDataQuality        SkillCategory = "data_quality"
	CategorySystemDesign       SkillCategory = "system_design"
	CategoryDistributedSystems SkillCategory = "distributed_systems"
	CategoryGovernance         SkillCategory = "governance"
	CategoryPerformance        SkillCategory = "performance"
	CategoryObservability      SkillCategory = "observability"
)

// AllCategories returns every category in display order.
func AllCategories() []SkillCategory {
	return []SkillCategory{
		CategorySQL, CategoryPython, CategoryETL, CategorySpark, CategoryStreaming,
		CategoryCloud, CategoryOrchestration, CategoryDataModeling, CategoryDataQuality,
		CategorySystemDesign, CategoryDistributedSystems, CategoryGovernance,
		CategoryPerformance, CategoryObservability,
	}
}

// Skill is a single assessable skill.
type Skill struct {
	ID          string
	Name        string
	Category    SkillCategory
	Description string
	Roles       []Role
}

// AppliesTo reports whether the skill is assessed for role r.
func (s Skill) AppliesTo(r Role) bool {
	for _, role := range s.Roles {
		if role == r {
			return true
		}
	}
	return false
}

var (
	jm  = []Role{RoleJunior, RoleMid}
	ms  = []Role{RoleMid, RoleSenior}
	sst = []Role{RoleSenior, RoleStaff}
	stp = []Role{RoleStaff, RolePrincipal}
)

// skills is the catalog in display order.
var skills = []Skill{
	// SQL
	{"sql_basics", "SQL Fundamentals", CategorySQL, "Basic SELECT, WHERE, ORDER BY, LIMIT operations", []Role{RoleJunior}},
	{"sql_joins", "SQL Joins", CategorySQL, "INNER, LEFT, RIGHT, FULL, CROSS joins", jm},
	{"sql_aggregations", "SQL Aggregations", CategorySQL, "GROUP BY, HAVING, aggregate functions", jm},
	{"sql_subqueries", "SQL Subqueries", CategorySQL, "Nested queries, correlated subqueries", jm},
	{"sql_window_functions", "Window Functions", CategorySQL, "ROW_NUMBER, RANK, LAG, LEAD, partitioning", ms},
	{"sql_ctes", "Common Table Expressions", CategorySQL, "WITH clause, recursive CTEs", ms},
	{"sql_optimization_basics", "SQL Optimization", CategorySQL, "Query plans, index usage, query rewriting", ms},
	{"query_optimization", "Advanced Query Optimization", CategoryPerformance, "Complex query tuning, cost-based optimization", sst},

	// ETL
	{"etl_concepts", "ETL Concepts", CategoryETL, "Extract, Transform, Load fundamentals", []Role{RoleJunior}},
	{"etl_pipeline_design", "ETL Pipeline Design", CategoryETL, "End-to-end pipeline architecture", ms},
	{"batch_processing", "Batch Processing", CategoryETL, "Batch job design and optimization", ms},
	{"incremental_loads", "Incremental Loading", CategoryETL, "CDC, watermarks, merge strategies", ms},

	// Spark
	{"spark_fundamentals", "Spark Fundamentals", CategorySpark, "RDDs, transformations, actions, lazy evaluation", []Role{RoleMid}},
	{"spark_dataframes", "Spark DataFrames", CategorySpark, "DataFrame API, operations, UDFs", ms},
	{"spark_tuning", "Spark Performance Tuning", CategorySpark, "Memory management, partitioning, broadcast joins", sst},
	{"data_skew_handling", "Data Skew Handling", CategorySpark, "Detecting and resolving data skew issues", sst},

	// Streaming
	{"stream_processing", "Stream Processing", CategoryStreaming, "Real-time data processing patterns", sst},
	{"kafka_architecture", "Kafka Architecture", CategoryStreaming, "Topics, partitions, consumer groups, replication", sst},
	{"exactly_once_semantics", "Exactly-Once Semantics", CategoryStreaming, "Delivery guarantees, idempotency, transactions", sst},

	// Orchestration
	{"airflow_basics", "Airflow Fundamentals", CategoryOrchestration, "DAGs, operators, scheduling, connections", ms},
	{"dag_design", "DAG Design Patterns", CategoryOrchestration, "Best practices for DAG architecture", ms},

	// Distributed systems
	{"distributed_computing", "Distributed Computing", CategoryDistributedSystems, "Parallel processing, fault tolerance", sst},
	{"cap_theorem", "CAP Theorem", CategoryDistributedSystems, "Consistency, availability, partition tolerance", sst},

	// System design
	{"data_platform_design", "Data Platform Design", CategorySystemDesign, "End-to-end platform architecture", sst},
	{"lakehouse_architecture", "Lakehouse Architecture", CategorySystemDesign, "Delta Lake, Iceberg, data lakehouse patterns", sst},
	{"enterprise_data_architecture", "Enterprise Data Architecture", CategorySystemDesign, "Organization-wide data strategy and design", stp},

	// Governance
	{"data_governance", "Data Governance", CategoryGovernance, "Policies, standards, stewardship", stp},
	{"data_security", "Data Security", CategoryGovernance, "Encryption, access control, PII handling", sst},

	// Observability
	{"data_observability", "Data Observability", CategoryObservability, "Monitoring data quality and pipeline health", sst},
	{"pipeline_monitoring", "Pipeline Monitoring", CategoryObservability, "Metrics, logging, alerting for pipelines", ms},
	{"lineage_tracking", "Data Lineage", CategoryObservability, "Tracking data flow and transformations", sst},

	// Data quality
	{"data_quality_concepts", "Data Quality Concepts", CategoryDataQuality, "Dimensions of data quality, validation", ms},
	{"data_testing", "Data Testing", CategoryDataQuality, "Unit tests, integration tests for pipelines", ms},
	{"data_contracts", "Data Contracts", CategoryDataQuality, "Schema contracts between producers and consumers", stp},

	// Cloud
	{"cloud_fundamentals", "Cloud Fundamentals", CategoryCloud, "Basic cloud concepts, compute, storage", []Role{RoleJunior}},
	{"cloud_data_services", "Cloud Data Services", CategoryCloud, "Managed databases, data warehouses, analytics", ms},
	{"cloud_cost_optimization", "Cloud Cost Optimization", CategoryCloud, "Right-sizing, reserved instances, cost monitoring", sst},
	{"multi_cloud_strategy", "Multi-Cloud Strategy", CategoryCloud, "Cross-cloud architecture and portability", stp},

	// Tooling, filed under python as general tooling.
	{"git_basics", "Git Fundamentals", CategoryPython, "Version control basics, branching, merging", []Role{RoleJunior}},
	{"linux_cli_basics", "Linux CLI", CategoryPython, "Command line navigation, scripting basics", []Role{RoleJunior}},
	{"python_fundamentals", "Python Fundamentals", CategoryPython, "Python syntax, data structures, functions", jm},
}
